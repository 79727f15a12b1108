package thread

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/jmylchreest/xstitch/internal/colour"
)

// DefaultQuery reads threads from a table laid out as
// palette(dmc_code, name, r, g, b). Rows are used in the order returned.
const DefaultQuery = "SELECT dmc_code, name, r, g, b FROM palette"

const dbTimeout = 10 * time.Second

// databaseExtensions are the file extensions treated as SQLite databases.
var databaseExtensions = []string{".db", ".sqlite", ".sqlite3"}

// DBSource loads a dataset from a SQL database: a SQLite file or a
// PostgreSQL connection URL.
type DBSource struct {
	driver string
	dsn    string
	query  string
}

// NewDBSource returns a source for a SQLite file path or a postgres:// URL.
func NewDBSource(dsn string) *DBSource {
	driver := "sqlite"
	if isPostgresURL(dsn) {
		driver = "postgres"
	}
	return &DBSource{driver: driver, dsn: dsn, query: DefaultQuery}
}

// WithQuery replaces the query used to read threads. It must return
// code, name, r, g and b columns in that order.
func (s *DBSource) WithQuery(query string) *DBSource {
	if query != "" {
		s.query = query
	}
	return s
}

// Driver returns the database/sql driver name in use.
func (s *DBSource) Driver() string {
	return s.driver
}

// Name returns the database file name without extension, or the database
// name of a postgres URL.
func (s *DBSource) Name() string {
	if s.driver == "postgres" {
		if u, err := url.Parse(s.dsn); err == nil {
			if name := strings.Trim(u.Path, "/"); name != "" {
				return name
			}
		}
		return "postgres"
	}
	base := filepath.Base(s.dsn)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load queries the database for the dataset's colours. Repeated codes keep
// their first row.
func (s *DBSource) Load() ([]Colour, error) {
	if s.driver == "sqlite" {
		// sqlite creates missing files on open.
		if _, err := os.Stat(s.dsn); err != nil {
			return nil, fmt.Errorf("failed to read palette database: %w", err)
		}
	}

	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("failed to query palette database: %w", err)
	}
	defer rows.Close()

	var colours []Colour
	seen := make(map[string]bool)
	for n := 1; rows.Next(); n++ {
		var code, name string
		var r, g, b int
		if err := rows.Scan(&code, &name, &r, &g, &b); err != nil {
			return nil, fmt.Errorf("failed to read palette row: %w", err)
		}
		if code == "" {
			return nil, fmt.Errorf("palette row %d has no code", n)
		}
		if seen[code] {
			continue
		}
		rgb, err := channels(r, g, b)
		if err != nil {
			return nil, fmt.Errorf("palette row %s: %w", code, err)
		}
		seen[code] = true
		colours = append(colours, Colour{Code: code, Name: name, RGB: rgb})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read palette rows: %w", err)
	}
	return colours, nil
}

func channels(r, g, b int) (colour.RGB, error) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return colour.RGB{}, fmt.Errorf("channel value %d out of range 0-255", v)
		}
	}
	return colour.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// IsDatabase reports whether location names a palette database rather than
// a dataset file.
func IsDatabase(location string) bool {
	if isPostgresURL(location) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(location))
	for _, e := range databaseExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// OpenSource returns the source for a user palette location: a database
// when IsDatabase says so, otherwise a dataset file.
func OpenSource(location string) Source {
	if IsDatabase(location) {
		return NewDBSource(location)
	}
	return NewFileSource(location)
}

func isPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}
