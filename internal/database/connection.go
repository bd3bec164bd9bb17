package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlx connection together with the active driver name,
// since a few statements differ between sqlite and postgres
type DB struct {
	*sqlx.DB
	driver string
}

// Connect establishes a connection to the database. DB_TYPE selects
// the driver: "sqlite" (the default) keeps a file under DATA_DIR,
// "postgres" connects to DATABASE_URL.
func Connect() (*DB, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}

	case "sqlite":
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}

		dbPath := filepath.Join(dataDir, "flashbot.db")
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %v", err)
		}

		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

	default:
		return nil, fmt.Errorf("unknown DB_TYPE %q", dbType)
	}

	wrapped := &DB{DB: db, driver: dbType}
	if err := wrapped.initializeSchema(); err != nil {
		return nil, err
	}
	return wrapped, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func (db *DB) initializeSchema() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL UNIQUE,
			answer TEXT NOT NULL,
			tags TEXT DEFAULT '',
			linked_id TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cards table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS card_progress (
			card_id TEXT PRIMARY KEY,
			review_count INTEGER DEFAULT 0,
			ease INTEGER DEFAULT 0,
			interval REAL DEFAULT 0,
			last_review TIMESTAMP,
			due_date TIMESTAMP,
			difficulty TEXT DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create card_progress table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS completed_cards (
			card_id TEXT PRIMARY KEY,
			completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create completed_cards table: %v", err)
	}

	// Insertion order of later_queue is the queue order
	var laterQueue string
	if db.driver == "postgres" {
		laterQueue = `
			CREATE TABLE IF NOT EXISTS later_queue (
				id SERIAL PRIMARY KEY,
				card_id TEXT UNIQUE NOT NULL,
				added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	} else {
		laterQueue = `
			CREATE TABLE IF NOT EXISTS later_queue (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				card_id TEXT UNIQUE NOT NULL,
				added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	}
	if _, err = db.Exec(laterQueue); err != nil {
		return fmt.Errorf("failed to create later_queue table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create settings table: %v", err)
	}

	return nil
}
