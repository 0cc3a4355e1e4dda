// Package api provides HTTP handlers and database connectivity for the
// lead-funnel pipeline.
package api

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/PeakReachMedia/peakreach-go/config"
	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
)

// DB holds the database connection.
type DB struct {
	Conn     *sql.DB
	UseTurso bool
}

// NewDB opens the backing store. Turso is preferred when credentials are
// configured; local SQLite is the fallback.
func NewDB() (*DB, error) {
	var conn *sql.DB
	var useTurso bool

	dbURL := os.Getenv("TURSO_DATABASE_URL")
	authToken := os.Getenv("TURSO_AUTH_TOKEN")

	if dbURL != "" && authToken != "" {
		log.Printf("Attempting to connect to Turso: URL=%s, Token=%s", dbURL, maskToken(authToken))
		connStr := dbURL + "?authToken=" + authToken
		c, err := sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := c.Ping(); pingErr == nil {
				conn = c
				useTurso = true
			} else {
				log.Printf("WARN: Turso ping failed, falling back to SQLite: %v", pingErr)
				c.Close()
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(config.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		c, err := sql.Open("sqlite3", config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := c.Ping(); err != nil {
			c.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
		conn = c
	}

	db := &DB{Conn: conn, UseTurso: useTurso}
	log.Printf("Connected to %s", db.ConnectionInfo())
	return db, nil
}

// EnsureSchema creates the pipeline tables when absent.
func (db *DB) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			first_page_url TEXT NOT NULL,
			current_page_url TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			city TEXT,
			state TEXT,
			country TEXT,
			browser TEXT NOT NULL DEFAULT 'Unknown',
			user_agent TEXT NOT NULL DEFAULT '',
			first_landed_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			website_url TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT,
			monthly_revenue TEXT,
			phone TEXT,
			company_name TEXT,
			step INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_results (
			id TEXT PRIMARY KEY,
			lead_id TEXT NOT NULL,
			url TEXT NOT NULL,
			seo_score INTEGER NOT NULL DEFAULT 0,
			performance_score INTEGER NOT NULL DEFAULT 0,
			accessibility_score INTEGER NOT NULL DEFAULT 0,
			best_practices_score INTEGER NOT NULL DEFAULT 0,
			ai_visibility_score INTEGER NOT NULL DEFAULT 0,
			issues_found INTEGER NOT NULL DEFAULT 0,
			opportunities TEXT NOT NULL DEFAULT '[]',
			diagnostics TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS competitor_analysis (
			id TEXT PRIMARY KEY,
			lead_id TEXT NOT NULL,
			niche TEXT NOT NULL DEFAULT '',
			competitors TEXT NOT NULL DEFAULT '[]',
			missed_opportunity_score INTEGER NOT NULL DEFAULT 0,
			gap_technical INTEGER NOT NULL DEFAULT 0,
			gap_content INTEGER NOT NULL DEFAULT 0,
			gap_authority INTEGER NOT NULL DEFAULT 0,
			gap_local_presence INTEGER NOT NULL DEFAULT 0,
			est_revenue_loss TEXT NOT NULL DEFAULT '{}',
			recommendations TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			lead_id TEXT NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			meeting_link TEXT NOT NULL DEFAULT '',
			attendee_name TEXT NOT NULL DEFAULT '',
			attendee_email TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_session_id ON leads(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_results_lead_id ON audit_results(lead_id)`,
		`CREATE INDEX IF NOT EXISTS idx_competitor_analysis_lead_id ON competitor_analysis(lead_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_lead_id ON bookings(lead_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}

	return nil
}

// ConnectionInfo returns a string describing the database connection
func (db *DB) ConnectionInfo() string {
	if db.UseTurso {
		return "Turso database"
	}
	return fmt.Sprintf("SQLite database (%s)", config.SQLitePath)
}

// maskToken hides most of the token for logging.
func maskToken(token string) string {
	if len(token) < 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
