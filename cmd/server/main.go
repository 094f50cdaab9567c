// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Annany2002/nebula-admin/api"
	"github.com/Annany2002/nebula-admin/config"
	"github.com/Annany2002/nebula-admin/internal/auth"
	"github.com/Annany2002/nebula-admin/internal/example"
	"github.com/Annany2002/nebula-admin/internal/logger"
	"github.com/Annany2002/nebula-admin/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting Nebula Admin server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Database Connection
	db, err := storage.Connect(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		customLog.Println("Closing database connection...")
		if err := db.Close(); err != nil {
			customLog.Printf("Error closing database: %v", err)
		}
	}()

	gdb, err := gorm.Open(sqlite.New(sqlite.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.New(customLog, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		customLog.Fatalf("Failed to open ORM session: %v", err)
	}

	// 3. Prepare demo data and the bootstrap admin
	if err := example.Migrate(ctx, db, gdb); err != nil {
		customLog.Fatalf("Failed to migrate demo tables: %v", err)
	}
	if err := example.Seed(ctx, db, gdb); err != nil {
		customLog.Fatalf("Failed to seed demo tables: %v", err)
	}
	if err := seedAdmin(ctx, db, cfg); err != nil {
		customLog.Fatalf("Failed to create bootstrap admin: %v", err)
	}

	schema, err := example.NewSchema(ctx, db, gdb, example.Options{
		Title:           cfg.AdminTitle,
		DefaultLanguage: cfg.DefaultLanguage,
	})
	if err != nil {
		customLog.Fatalf("Failed to build admin schema: %v", err)
	}

	// 4. Setup Router (passing dependencies)
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	authenticator := auth.NewJWTAuthenticator(db, cfg.JWTSecret, cfg.JWTExpiration)
	router := api.SetupRouter(schema, authenticator, cfg)

	// 5. Start Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		customLog.Printf("Server listening on port %s, admin API at %s", cfg.ServerPort, cfg.AdminPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			customLog.Errorf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	customLog.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		customLog.Errorf("Graceful shutdown failed: %v", err)
	}
}

// seedAdmin creates the configured bootstrap admin when it does not exist.
func seedAdmin(ctx context.Context, db *sql.DB, cfg *config.Config) error {
	if cfg.SeedAdminUsername == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	created, err := storage.EnsureAdminUser(ctx, db, cfg.SeedAdminUsername, hash)
	if err != nil {
		return err
	}
	if created {
		customLog.Printf("Created bootstrap admin %q", cfg.SeedAdminUsername)
	}
	return nil
}
