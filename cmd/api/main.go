package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"markbook.org/internal/auth"
	"markbook.org/internal/config"
	"markbook.org/internal/gqlapi"
	"markbook.org/internal/httpapi"
	"markbook.org/internal/obs"
	"markbook.org/internal/records"
	"markbook.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	shutdownTracing, err := obs.InitTracing(context.Background(), "markbook-api", version, cfg.TraceStdout)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	store, err := pg.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	codec, err := auth.NewCodec(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	policy := auth.NewPolicy()
	authSvc := auth.NewService(store, codec, auth.NewHasher(cfg.BcryptCost))
	recordsSvc := records.NewService(store, policy)

	gql, err := gqlapi.New(authSvc, recordsSvc)
	if err != nil {
		log.Fatalf("graphql schema: %v", err)
	}

	api := httpapi.New(authSvc, recordsSvc, policy, gql, httpapi.ReadyProbe{DB: store.DB()}, version)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting markbook-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = shutdownTracing(ctx)
	_ = store.Close()
	log.Println("Stopped")
}
