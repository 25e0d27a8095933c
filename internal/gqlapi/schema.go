// Package gqlapi is the schema-typed query/mutation surface. Identity is
// derived once per request from the same bearer header the REST surface
// reads, and every resolver goes through the records/auth services, which
// re-check the shared policy table before touching data.
package gqlapi

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"markbook.org/internal/auth"
	"markbook.org/internal/records"
)

// jsonScalar carries free-form mark sheets across the wire, mirroring the
// schema's `scalar JSON`.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value.",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return parseLiteral(valueAST)
	},
})

func parseLiteral(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.ObjectValue:
		obj := make(map[string]interface{}, len(v.Fields))
		for _, field := range v.Fields {
			obj[field.Name.Value] = parseLiteral(field.Value)
		}
		return obj
	case *ast.ListValue:
		list := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			list = append(list, parseLiteral(item))
		}
		return list
	case *ast.IntValue, *ast.FloatValue, *ast.StringValue, *ast.BooleanValue:
		return v.GetValue()
	default:
		return nil
	}
}

var studentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Student",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"rollNumber": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var studentWithMarksType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StudentWithMarks",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"rollNumber": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"marks":      &graphql.Field{Type: jsonScalar},
	},
})

// API is the GraphQL layer.
type API struct {
	schema  graphql.Schema
	auth    *auth.Service
	records *records.Service
}

// New builds the schema around the services. The same service instances
// back the REST surface, which is what keeps the two surfaces equivalent.
func New(authSvc *auth.Service, recordsSvc *records.Service) (*API, error) {
	a := &API{auth: authSvc, records: recordsSvc}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getStudents": &graphql.Field{
				Type:    graphql.NewList(studentType),
				Resolve: a.resolveGetStudents,
			},
			"getStudentById": &graphql.Field{
				Type: studentType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: a.resolveGetStudentByID,
			},
			"getMarks": &graphql.Field{
				Type: jsonScalar,
				Args: graphql.FieldConfigArgument{
					"studentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: a.resolveGetMarks,
			},
			"getAllStudentsWithMarks": &graphql.Field{
				Type:    graphql.NewList(studentWithMarksType),
				Resolve: a.resolveAllStudentsWithMarks,
			},
			"downloadAllMarksBase64": &graphql.Field{
				Type:    graphql.String,
				Resolve: a.resolveDownloadAllMarks,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"role":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: a.resolveRegister,
			},
			"login": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: a.resolveLogin,
			},
			"addStudent": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"name":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"rollNumber": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: a.resolveAddStudent,
			},
			"addMarks": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"studentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"marks":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(jsonScalar)},
				},
				Resolve: a.resolveAddMarks,
			},
			"downloadMarksBase64": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"studentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: a.resolveDownloadMarks,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return nil, err
	}
	a.schema = schema
	return a, nil
}
