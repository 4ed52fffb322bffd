package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cm-taskflow/TF/internal/config"
	"github.com/cm-taskflow/TF/internal/models"
)

// Models returns every entity AutoMigrate must know about, in FK order.
func Models() []any {
	return []any{&models.User{}, &models.Client{}, &models.Task{}, &models.UserClient{}}
}

// ConnectAndMigrate opens the configured Postgres database with retries, runs
// migrations (SQL files when MIGRATIONS=1, AutoMigrate otherwise) and seeds
// demo data when DB_SEED is set.
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := NormalizeDSN(config.Load().DatabaseDSN)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty; check the environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// Print masked DSN once for diagnostics (before migrations for visibility)
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)(\S+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	if config.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range Models() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "clients", "tasks"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if config.ParseBool("DB_SEED", false) {
		Seed(db)
	}
	return db, nil
}

// Seed inserts a couple of demo clients with tasks so a fresh environment has
// something to look at. Safe to run repeatedly.
func Seed(db *gorm.DB) {
	demoClients := []models.Client{
		{Name: "Acme BV", LegalForm: "BV", VATNumber: "BE0123456789", FiscalYearEnd: "2025-12-31",
			DirectorName: "J. Doe", DirectorEmail: "j.doe@acme.be", Language: "NL", Status: models.ClientStatusActive},
		{Name: "Lumière SPRL", LegalForm: "SPRL", VATNumber: "BE0987654321", FiscalYearEnd: "2025-06-30",
			DirectorName: "M. Dupont", DirectorEmail: "m.dupont@lumiere.be", Language: "FR", Status: models.ClientStatusActive},
	}
	for _, c := range demoClients {
		var existing models.Client
		if err := db.Where("vat_number = ?", c.VATNumber).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&c).Error; err != nil {
				continue
			}
			task := models.Task{ClientID: c.ID, Title: "Annual accounts " + c.Name, Status: models.TaskStatusNew, Priority: "medium"}
			var count int64
			db.Model(&models.Task{}).Where("client_id = ? AND title = ?", c.ID, task.Title).Count(&count)
			if count == 0 {
				db.Create(&task)
			}
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using the golang-migrate
// file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
