package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/classifurlr/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "verdicts.db"

// timeLayout is RFC 3339 with fixed nanoseconds, so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrInvalidLimit is returned when a listing limit is not positive.
var ErrInvalidLimit = errors.New("limit must be positive")

// VerdictDB stores classification verdicts.
type VerdictDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures VerdictDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging, letting the history command
	// read while the server writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the verdict database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*VerdictDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it. The busy
	// timeout lets history read while a server process is writing.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	dsn += "&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	vdb := &VerdictDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := vdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return vdb, nil
}

// Close closes the database connection.
func (v *VerdictDB) Close() error {
	return v.db.Close()
}

// Path returns the database file path.
func (v *VerdictDB) Path() string {
	return v.dbPath
}

func (v *VerdictDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS verdicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		status TEXT NOT NULL,
		blocked INTEGER,
		confidence REAL,
		input_digest TEXT NOT NULL,
		record_json TEXT NOT NULL,
		classified_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_verdicts_url ON verdicts(url, classified_at);
	CREATE INDEX IF NOT EXISTS idx_verdicts_digest ON verdicts(input_digest);
	`
	_, err := v.db.ExecContext(context.Background(), schema)
	return err
}

// Verdict is a stored classification.
type Verdict struct {
	ID           int64
	URL          string
	Status       model.Direction
	Blocked      model.Blocked
	Confidence   *float64
	InputDigest  string
	Record       model.Record
	ClassifiedAt time.Time
}

// Digest returns the hex SHA3-256 digest of a classified input.
func Digest(input []byte) string {
	sum := sha3.Sum256(input)
	return hex.EncodeToString(sum[:])
}

// Save stores a verdict for the session input it was computed from and
// returns its ID.
func (v *VerdictDB) Save(ctx context.Context, record model.Record, input []byte) (int64, error) {
	return v.SaveAt(ctx, record, input, time.Now())
}

// SaveAt is Save with an explicit classification time.
func (v *VerdictDB) SaveAt(ctx context.Context, record model.Record, input []byte, at time.Time) (int64, error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize record: %w", err)
	}

	var blocked sql.NullInt64
	switch record.Blocked {
	case model.BlockedYes:
		blocked = sql.NullInt64{Int64: 1, Valid: true}
	case model.BlockedNo:
		blocked = sql.NullInt64{Int64: 0, Valid: true}
	}
	var confidence sql.NullFloat64
	if record.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *record.Confidence, Valid: true}
	}

	query := `
	INSERT INTO verdicts (url, status, blocked, confidence, input_digest, record_json, classified_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := v.db.ExecContext(ctx, query,
		record.Subject,
		record.Status.String(),
		blocked,
		confidence,
		Digest(input),
		string(recordJSON),
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save verdict: %w", err)
	}
	return res.LastInsertId()
}

const verdictColumns = `id, url, status, blocked, confidence, input_digest, record_json, classified_at`

// Recent returns up to limit verdicts for url, newest first.
func (v *VerdictDB) Recent(ctx context.Context, url string, limit int) ([]Verdict, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	query := `SELECT ` + verdictColumns + ` FROM verdicts
	WHERE url = ?
	ORDER BY classified_at DESC, id DESC
	LIMIT ?`
	return v.query(ctx, query, url, limit)
}

// Latest returns up to limit verdicts across all URLs, newest first.
func (v *VerdictDB) Latest(ctx context.Context, limit int) ([]Verdict, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	query := `SELECT ` + verdictColumns + ` FROM verdicts
	ORDER BY classified_at DESC, id DESC
	LIMIT ?`
	return v.query(ctx, query, limit)
}

// ByDigest returns the verdicts computed from an identical input, newest first.
func (v *VerdictDB) ByDigest(ctx context.Context, digest string) ([]Verdict, error) {
	query := `SELECT ` + verdictColumns + ` FROM verdicts
	WHERE input_digest = ?
	ORDER BY classified_at DESC, id DESC`
	return v.query(ctx, query, digest)
}

// ListURLs returns every URL with at least one verdict.
func (v *VerdictDB) ListURLs(ctx context.Context) ([]string, error) {
	rows, err := v.db.QueryContext(ctx, `SELECT DISTINCT url FROM verdicts ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (v *VerdictDB) query(ctx context.Context, query string, args ...any) ([]Verdict, error) {
	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var out []Verdict
	for rows.Next() {
		var (
			vd         Verdict
			status     string
			blocked    sql.NullInt64
			confidence sql.NullFloat64
			recordJSON string
			at         string
		)
		if err := rows.Scan(&vd.ID, &vd.URL, &status, &blocked, &confidence, &vd.InputDigest, &recordJSON, &at); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		if err := json.Unmarshal([]byte(recordJSON), &vd.Record); err != nil {
			continue // Skip malformed records
		}
		vd.Status = model.Direction(status)
		if blocked.Valid {
			vd.Blocked = model.BlockedFromBool(blocked.Int64 == 1)
		}
		if confidence.Valid {
			c := confidence.Float64
			vd.Confidence = &c
		}
		vd.ClassifiedAt = parseTimestamp(at)
		out = append(out, vd)
	}
	return out, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
