package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/intelligrit/fitment/internal/catalog"
	_ "github.com/lib/pq"
)

// Store holds a built catalog in a SQL database. DuckDB is the default;
// any driver accepting $n placeholders works, and postgres is registered
// for a shared catalog.
type Store struct {
	DB     *sql.DB
	Driver string
}

// New opens (or creates) a DuckDB catalog in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return Open("duckdb", filepath.Join(dataDir, "fitment.duckdb"))
}

// Open connects with the named driver and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driver, err)
	}

	s := &Store{DB: db, Driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS examples (
			vehicle TEXT NOT NULL,
			width DOUBLE PRECISION NOT NULL,
			wheel_offset DOUBLE PRECISION NOT NULL,
			position INTEGER NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (vehicle, width, wheel_offset, position)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// WriteBuilt replaces the stored catalog with a freshly built one.
func (s *Store) WriteBuilt(built *catalog.Built, builtAt string) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM examples"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO examples (vehicle, width, wheel_offset, position, record)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for t, records := range built.Shards {
		for i, rec := range records {
			if _, err := stmt.Exec(t.Vehicle, t.Width, t.Offset, i, string(rec)); err != nil {
				return fmt.Errorf("inserting %s #%d: %w", t, i, err)
			}
		}
	}

	if _, err := tx.Exec("DELETE FROM meta WHERE key = 'built_at'"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES ('built_at', $1)", builtAt); err != nil {
		return err
	}

	return tx.Commit()
}

// Retrieve returns the records stored for a triple as a JSON array.
func (s *Store) Retrieve(ctx context.Context, t catalog.Triple) ([]byte, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT record FROM examples WHERE vehicle = $1 AND width = $2 AND wheel_offset = $3 ORDER BY position",
		t.Vehicle, t.Width, t.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec string
		if err := rows.Scan(&rec); err != nil {
			return nil, err
		}
		records = append(records, json.RawMessage(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, t)
	}
	return json.Marshal(records)
}

// LoadIndex derives the catalog index from the stored records.
func (s *Store) LoadIndex(ctx context.Context) (catalog.Index, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT vehicle, width, wheel_offset, COUNT(*) FROM examples GROUP BY vehicle, width, wheel_offset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := catalog.Index{}
	for rows.Next() {
		var (
			vehicle       string
			width, offset float64
			n             int
		)
		if err := rows.Scan(&vehicle, &width, &offset, &n); err != nil {
			return nil, err
		}
		if idx[vehicle] == nil {
			idx[vehicle] = make(map[string]map[string]int)
		}
		wk := catalog.Key(width)
		if idx[vehicle][wk] == nil {
			idx[vehicle][wk] = make(map[string]int)
		}
		idx[vehicle][wk][catalog.Key(offset)] = n
	}
	return idx, rows.Err()
}

// BuiltAt returns when the stored catalog was written, or "" if never.
func (s *Store) BuiltAt() string {
	var builtAt sql.NullString
	s.DB.QueryRow("SELECT value FROM meta WHERE key = 'built_at'").Scan(&builtAt)
	return builtAt.String
}

// ExampleCount returns the number of stored shard entries.
func (s *Store) ExampleCount() int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM examples").Scan(&n)
	return n
}

// CountByVehicle returns shard entry counts per vehicle.
func (s *Store) CountByVehicle() map[string]int {
	m := make(map[string]int)
	rows, err := s.DB.Query("SELECT vehicle, COUNT(*) FROM examples GROUP BY vehicle ORDER BY vehicle")
	if err != nil {
		return m
	}
	defer rows.Close()
	for rows.Next() {
		var vehicle string
		var cnt int
		rows.Scan(&vehicle, &cnt)
		m[vehicle] = cnt
	}
	return m
}

// WidthsByVehicle returns the distinct wheel widths stored for a vehicle,
// formatted as index keys.
func (s *Store) WidthsByVehicle(vehicle string) []string {
	rows, err := s.DB.Query("SELECT DISTINCT width FROM examples WHERE vehicle = $1", vehicle)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var widths []float64
	for rows.Next() {
		var w float64
		if rows.Scan(&w) == nil {
			widths = append(widths, w)
		}
	}
	sort.Float64s(widths)

	out := make([]string, len(widths))
	for i, w := range widths {
		out[i] = catalog.Key(w)
	}
	return out
}
