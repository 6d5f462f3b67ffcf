package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/skicrew/inscriptions/internal/api"
	"github.com/skicrew/inscriptions/internal/archive"
	"github.com/skicrew/inscriptions/internal/config"
	"github.com/skicrew/inscriptions/internal/mailer"
	"github.com/skicrew/inscriptions/internal/pkg/logger"
	"github.com/skicrew/inscriptions/internal/repository/postgres"
	"github.com/skicrew/inscriptions/internal/service/dispatch"
	"github.com/skicrew/inscriptions/internal/service/event"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// extractHost pulls the host portion out of a DSN for safe logging.
func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

// openDatabase opens the PostgreSQL pool with conservative limits and
// server-side timeouts appended to the DSN.
func openDatabase(dbURL string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	if !strings.Contains(dbURL, "connect_timeout") {
		dbURL += sep + "connect_timeout=5"
		sep = "&"
	}
	dbURL += sep + "options=-c%20statement_timeout%3D15000%20-c%20idle_in_transaction_session_timeout%3D15000"
	log.Printf("DB URL host portion: ...@%s/...", extractHost(dbURL))

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	// Pool limits early to prevent connection exhaustion
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)
	return db, nil
}

func buildArchiver(ctx context.Context, cfg config.StorageConfig) archive.Archiver {
	switch cfg.Type {
	case "s3":
		a, err := archive.NewS3Archiver(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.GetAWSProfile())
		if err != nil {
			log.Printf("Warning: S3 archiver init failed: %v - archiving disabled", err)
			return nil
		}
		log.Printf("S3 archiver ready (bucket %s)", cfg.S3Bucket)
		return a
	case "local", "":
		path := cfg.LocalPath
		if path == "" {
			path = "./data/dispatches"
		}
		a, err := archive.NewLocalArchiver(path)
		if err != nil {
			log.Printf("Warning: local archiver init failed: %v - archiving disabled", err)
			return nil
		}
		log.Printf("Local archiver ready (%s)", path)
		return a
	default:
		log.Printf("Warning: unknown storage.type %q - archiving disabled", cfg.Type)
		return nil
	}
}

func main() {
	log.Println("╔══════════════════════════════════════════════════════╗")
	log.Println("║  SkiCrew Inscriptions Server (cmd/server/main.go)    ║")
	log.Println("║  Race entry sheets with PDF and SES dispatch         ║")
	log.Println("╚══════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	if cfg.Database.URL == "" {
		log.Fatal("database.url is not set (set DATABASE_URL or config/config.yaml)")
	}
	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Printf("Warning: database ping failed: %v - continuing, health will report degraded", err)
	} else {
		log.Println("Database connected successfully")
	}
	pingCancel()

	events := event.NewService(postgres.NewEventRepo(db))
	sheets := inscription.NewService(postgres.NewInscriptionRepo(db))

	// Email sending is optional: without a sender address the dispatch
	// endpoint replies 503 and everything else still works.
	var sender mailer.Sender
	if cfg.Email.Configured() {
		ses, err := mailer.NewSESSender(ctx, cfg.Email)
		if err != nil {
			log.Printf("Warning: SES init failed: %v - dispatch disabled", err)
		} else {
			sender = ses
			log.Printf("SES mailer ready (region %s, sender %s)", cfg.Email.Region, cfg.Email.Sender)
		}
	} else {
		log.Println("Email not configured (email.sender empty) - dispatch disabled")
	}

	tpls := mailer.NewTemplates(cfg.Email.SubjectTemplate, cfg.Email.BodyTemplate)
	archiver := buildArchiver(ctx, cfg.Storage)
	dispatches := dispatch.NewService(postgres.NewDispatchRepo(db), sheets, sender, tpls, archiver)

	handlers := api.NewHandlers(events, sheets, dispatches, db)
	router := api.SetupRoutes(handlers, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           router,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized - server is ready")

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
