package auth

import "sort"

// Operation names a protected action reachable through either API surface.
type Operation string

const (
	OpStudentsList   Operation = "students.list"
	OpStudentsGet    Operation = "students.get"
	OpStudentsAdd    Operation = "students.add"
	OpMarksRead      Operation = "marks.read"
	OpMarksWrite     Operation = "marks.write"
	OpMarksOverview  Operation = "marks.overview"
	OpMarksExport    Operation = "marks.export"
	OpMarksExportAll Operation = "marks.export_all"

	// Credential lifecycle operations carry no role requirement; they are
	// named here only for telemetry and audit events.
	OpRegister Operation = "auth.register"
	OpLogin    Operation = "auth.login"
	OpLogout   Operation = "auth.logout"
)

// Policy maps each operation to the roles allowed to invoke it. Both API
// surfaces must consult the same instance: the table existing in exactly
// one place is what keeps role requirements from diverging between the
// REST routes and the query schema.
type Policy struct {
	table map[Operation]map[Role]struct{}
}

// NewPolicy returns the static operation descriptor table.
func NewPolicy() *Policy {
	return &Policy{table: map[Operation]map[Role]struct{}{
		OpStudentsList:   roleSet(RoleAdmin, RoleTeacher),
		OpStudentsGet:    roleSet(RoleAdmin, RoleTeacher),
		OpStudentsAdd:    roleSet(RoleAdmin),
		OpMarksRead:      roleSet(RoleTeacher),
		OpMarksWrite:     roleSet(RoleTeacher),
		OpMarksOverview:  roleSet(RoleTeacher),
		OpMarksExport:    roleSet(RoleAdmin, RoleTeacher),
		OpMarksExportAll: roleSet(RoleTeacher),
	}}
}

// Allows reports whether role may invoke op. Unknown operations allow
// nothing.
func (p *Policy) Allows(op Operation, role Role) bool {
	roles, ok := p.table[op]
	if !ok {
		return false
	}
	_, ok = roles[role]
	return ok
}

// Operations returns every guarded operation in stable order.
func (p *Policy) Operations() []Operation {
	ops := make([]Operation, 0, len(p.table))
	for op := range p.table {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

func roleSet(roles ...Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}
