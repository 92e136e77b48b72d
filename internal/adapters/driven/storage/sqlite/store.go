package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/drawsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "draws.db"

// Store is a SQLite-based storage that provides access to the
// draw and scheduler store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	fsys fs.FS
}

// NewStore creates a new SQLite store at the specified data directory
// and ensures the schema exists.
// If dataDir is empty, defaults to ~/.drawsync/data/draws.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".drawsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL lets the HTTP API read while a sync writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		fsys: migrations.FS,
	}

	if err := s.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DrawStore returns a DrawStore interface backed by this store.
func (s *Store) DrawStore() driven.DrawStore {
	return &drawStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// Initialize applies any schema files not yet recorded in schema_migrations.
// All schema statements are create-if-absent.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.migrate(ctx, s.fsys); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Draw Store ====================

// drawStore implements driven.DrawStore.
type drawStore struct {
	store *Store
}

var _ driven.DrawStore = (*drawStore)(nil)

const drawColumns = `id, qh, kj_time, zhou,
	hong_one, hong_two, hong_three, hong_four, hong_five, hong_six, lan_ball`

// Initialize ensures the schema exists.
func (s *drawStore) Initialize(ctx context.Context) error {
	return s.store.Initialize(ctx)
}

// LatestSequenceID returns the highest stored sequence ID, or 0 when empty.
func (s *drawStore) LatestSequenceID(ctx context.Context) (int64, error) {
	var latest int64
	row := s.store.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM ball_info")
	if err := row.Scan(&latest); err != nil {
		return 0, fmt.Errorf("reading latest sequence id: %w", err)
	}
	return latest, nil
}

// Upsert inserts or replaces a draw. Each call commits immediately.
func (s *drawStore) Upsert(ctx context.Context, record domain.DrawRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	p := record.PrimaryNumbers
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ball_info (`+drawColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			qh = excluded.qh,
			kj_time = excluded.kj_time,
			zhou = excluded.zhou,
			hong_one = excluded.hong_one,
			hong_two = excluded.hong_two,
			hong_three = excluded.hong_three,
			hong_four = excluded.hong_four,
			hong_five = excluded.hong_five,
			hong_six = excluded.hong_six,
			lan_ball = excluded.lan_ball
	`, record.SequenceID, record.IssueLabel, record.DrawTimestamp, record.WeekdayLabel,
		p[0], p[1], p[2], p[3], p[4], p[5], record.SecondaryNumber)

	if err != nil {
		return fmt.Errorf("upserting draw %s: %w", record.IssueLabel, err)
	}
	return nil
}

// Get retrieves a draw by sequence ID.
func (s *drawStore) Get(ctx context.Context, sequenceID int64) (*domain.DrawRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+drawColumns+" FROM ball_info WHERE id = ?", sequenceID)
	return scanDraw(row)
}

// Latest returns the draw with the highest sequence ID.
func (s *drawStore) Latest(ctx context.Context) (*domain.DrawRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+drawColumns+" FROM ball_info ORDER BY id DESC LIMIT 1")
	return scanDraw(row)
}

// Range returns draws with from <= id <= to, ascending.
func (s *drawStore) Range(ctx context.Context, from, to int64) ([]domain.DrawRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+drawColumns+" FROM ball_info WHERE id >= ? AND id <= ? ORDER BY id", from, to)
	if err != nil {
		return nil, fmt.Errorf("querying draws: %w", err)
	}
	defer rows.Close()

	draws := []domain.DrawRecord{}
	for rows.Next() {
		d, err := scanDraw(rows)
		if err != nil {
			return nil, err
		}
		draws = append(draws, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating draws: %w", err)
	}
	return draws, nil
}

// Count returns the number of stored draws.
func (s *drawStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ball_info").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting draws: %w", err)
	}
	return n, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDraw scans one ball_info row.
func scanDraw(row rowScanner) (*domain.DrawRecord, error) {
	var d domain.DrawRecord
	var openTime, week sql.NullString
	p := &d.PrimaryNumbers

	err := row.Scan(&d.SequenceID, &d.IssueLabel, &openTime, &week,
		&p[0], &p[1], &p[2], &p[3], &p[4], &p[5], &d.SecondaryNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning draw: %w", err)
	}

	d.DrawTimestamp = openTime.String
	d.WeekdayLabel = week.String
	return &d, nil
}
