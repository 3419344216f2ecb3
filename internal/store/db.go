package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

const dbFile = "pageview.duckdb"

// NewDB opens the DuckDB database at path. ":memory:" opens a private
// in-memory database.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// DBPath returns the database location for a data folder. An empty folder
// means in-memory.
func DBPath(dataFolder string) string {
	if dataFolder == "" {
		return ":memory:"
	}
	return filepath.Join(dataFolder, dbFile)
}
