package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/histsheet/internal/log"
	"github.com/nao1215/histsheet/internal/model"
)

// FileName is the name of the history database file inside the db directory.
const FileName = "histsheet.db"

// DefaultListLimit is the number of conversions listed when no limit is given.
const DefaultListLimit = 20

// HistoryDB stores recorded conversions and their visits.
//
// Design decision: visits are stored as rows rather than as one JSON blob
// per conversion so a single run can be read back in order with a plain
// query, and the schema stays readable with the sqlite3 shell.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer. Batch conversions share this handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		sheet_name TEXT NOT NULL,
		encoding TEXT,
		confidence INTEGER DEFAULT 0,
		fingerprint TEXT,
		record_count INTEGER DEFAULT 0,
		incomplete_count INTEGER DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_fingerprint ON conversions(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_conversions_timestamp ON conversions(timestamp);

	-- Visits keep their export order through the autoincrement id.
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversion_id INTEGER NOT NULL REFERENCES conversions(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		visited_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visits_conversion ON visits(conversion_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// ConversionRecord is a stored conversion without its visits.
type ConversionRecord struct {
	ID              int64     `json:"id"`
	RunID           string    `json:"run_id"`
	InputPath       string    `json:"input_path"`
	OutputPath      string    `json:"output_path"`
	SheetName       string    `json:"sheet_name"`
	Encoding        string    `json:"encoding"`
	Confidence      int       `json:"confidence"`
	Fingerprint     string    `json:"fingerprint"`
	RecordCount     int       `json:"record_count"`
	IncompleteCount int       `json:"incomplete_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// Visit is a stored history entry belonging to a conversion.
type Visit struct {
	ID           int64     `json:"id"`
	ConversionID int64     `json:"conversion_id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	VisitedAt    time.Time `json:"visited_at"`
}

// SaveConversion stores c and all of its records in a single transaction
// and returns the new conversion ID. Visit URLs are stored without query
// strings, credentials or fragments.
func (hdb *HistoryDB) SaveConversion(ctx context.Context, c *model.Conversion) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO conversions (run_id, input_path, output_path, sheet_name, encoding,
		confidence, fingerprint, record_count, incomplete_count, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.RunID,
		c.InputPath,
		c.OutputPath,
		c.SheetName,
		c.Encoding.Charset,
		c.Encoding.Confidence,
		c.Fingerprint,
		len(c.Records),
		c.Incomplete,
		c.StartedAt.UTC().Format(model.CanonicalTimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert conversion: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read conversion id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO visits (conversion_id, url, title, visited_at)
	VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare visit insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range c.Records {
		if _, err := stmt.ExecContext(ctx, id, storedURL(r.URL), r.Title, r.VisitedOn()); err != nil {
			return 0, fmt.Errorf("failed to insert visit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit conversion: %w", err)
	}

	return id, nil
}

// storedURL redacts u the way the logger does. Values that are not
// absolute URLs are stored unchanged.
func storedURL(u string) string {
	if redacted, ok := log.RedactURL(u); ok {
		return redacted
	}
	return u
}

const conversionColumns = `id, run_id, input_path, output_path, sheet_name,
	COALESCE(encoding, ''), confidence, COALESCE(fingerprint, ''),
	record_count, incomplete_count, timestamp`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversion(s rowScanner) (*ConversionRecord, error) {
	var rec ConversionRecord
	var timestamp string

	if err := s.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.InputPath,
		&rec.OutputPath,
		&rec.SheetName,
		&rec.Encoding,
		&rec.Confidence,
		&rec.Fingerprint,
		&rec.RecordCount,
		&rec.IncompleteCount,
		&timestamp,
	); err != nil {
		return nil, err
	}
	rec.Timestamp = parseTimestamp(timestamp)
	return &rec, nil
}

// ListConversions returns the most recent conversions, newest first.
// A non-positive limit uses DefaultListLimit.
func (hdb *HistoryDB) ListConversions(ctx context.Context, limit int) ([]ConversionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := hdb.db.QueryContext(ctx,
		`SELECT `+conversionColumns+` FROM conversions ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close()

	results := make([]ConversionRecord, 0)
	for rows.Next() {
		rec, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		results = append(results, *rec)
	}

	return results, rows.Err()
}

// GetConversion returns the conversion with the given ID.
// It returns ErrConversionNotFound if there is none.
func (hdb *HistoryDB) GetConversion(ctx context.Context, id int64) (*ConversionRecord, error) {
	row := hdb.db.QueryRowContext(ctx,
		`SELECT `+conversionColumns+` FROM conversions WHERE id = ?`, id)

	rec, err := scanConversion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrConversionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}
	return rec, nil
}

// FindByFingerprint returns earlier conversions of identical input content,
// newest first. The result is empty when the content was never converted.
func (hdb *HistoryDB) FindByFingerprint(ctx context.Context, fingerprint string) ([]ConversionRecord, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT `+conversionColumns+` FROM conversions WHERE fingerprint = ? ORDER BY timestamp DESC, id DESC`,
		fingerprint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversions: %w", err)
	}
	defer rows.Close()

	results := make([]ConversionRecord, 0)
	for rows.Next() {
		rec, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		results = append(results, *rec)
	}

	return results, rows.Err()
}

// GetVisits returns the visits of a conversion in export order.
func (hdb *HistoryDB) GetVisits(ctx context.Context, conversionID int64) ([]Visit, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, conversion_id, url, title, visited_at
	FROM visits
	WHERE conversion_id = ?
	ORDER BY id
	`, conversionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visits: %w", err)
	}
	defer rows.Close()

	visits := make([]Visit, 0)
	for rows.Next() {
		var v Visit
		var visitedAt string
		if err := rows.Scan(&v.ID, &v.ConversionID, &v.URL, &v.Title, &visitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.VisitedAt = parseTimestamp(visitedAt)
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
