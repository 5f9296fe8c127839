package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"motormart/config"
)

// LegacyDB is the global database instance for raw SQL operations. It backs
// the generic record store used by the dispatch endpoints.
var LegacyDB *sql.DB

// Store is the generic record store bound to LegacyDB
var Store *RecordStore

// InitLegacyDB initializes the raw SQL connection for the record store
func InitLegacyDB() error {
	var err error

	switch config.AppConfig.DBDriver {
	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		var connStr string

		if dbURL != "" {
			connStr = dbURL
			log.Println("Using DATABASE_URL environment variable for PostgreSQL legacy connection")
		} else {
			connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				config.AppConfig.DBHost,
				config.AppConfig.DBPort,
				config.AppConfig.DBUser,
				config.AppConfig.DBPassword,
				config.AppConfig.DBName)

			log.Printf("Attempting to connect to PostgreSQL legacy DB at host=%s port=%s user=%s dbname=%s",
				config.AppConfig.DBHost,
				config.AppConfig.DBPort,
				config.AppConfig.DBUser,
				config.AppConfig.DBName)
		}

		LegacyDB, err = sql.Open("postgres", connStr)
		if err != nil {
			log.Printf("Failed to connect to PostgreSQL legacy database: %v", err)
			return err
		}

		log.Println("PostgreSQL legacy database connection established successfully")

	case "sqlite", "sqlite3":
		dbDir := filepath.Dir(config.AppConfig.DBPath)
		if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
			log.Printf("Failed to create directory for SQLite database: %v", err)
			return err
		}

		LegacyDB, err = sql.Open("sqlite3", config.AppConfig.DBPath)
		if err != nil {
			log.Printf("Failed to connect to SQLite legacy database: %v", err)
			return err
		}

		// Enable foreign key constraints for SQLite
		_, err = LegacyDB.Exec("PRAGMA foreign_keys = ON")
		if err != nil {
			log.Printf("Failed to enable foreign keys in SQLite: %v", err)
			return err
		}

		log.Printf("SQLite legacy database connection established successfully at %s", config.AppConfig.DBPath)

	default:
		return fmt.Errorf("unsupported database driver: %s", config.AppConfig.DBDriver)
	}

	// Test the connection
	if err = LegacyDB.Ping(); err != nil {
		log.Printf("Failed to ping legacy database: %v", err)
		return err
	}

	Store = NewRecordStore(LegacyDB, config.AppConfig.DBDriver)
	return nil
}

// CloseLegacyDB closes the legacy database connection
func CloseLegacyDB() error {
	if LegacyDB != nil {
		return LegacyDB.Close()
	}
	return nil
}
