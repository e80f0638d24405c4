package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chrissnell/astralphase/pkg/phase"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS phase_transitions (
	id         TEXT PRIMARY KEY,
	sensor     TEXT NOT NULL,
	at_ns      INTEGER NOT NULL,
	from_label TEXT NOT NULL,
	to_label   TEXT NOT NULL,
	elevation  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_phase_transitions_sensor_at
	ON phase_transitions (sensor, at_ns DESC);
`

// SQLiteStore keeps transitions in a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (creating if needed) the database at dbPath
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, t Transition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO phase_transitions (id, sensor, at_ns, from_label, to_label, elevation)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Sensor, t.At.UnixNano(), t.From.String(), t.To.String(), t.Elevation)
	if err != nil {
		return fmt.Errorf("failed to insert transition: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, sensorName string, limit int) ([]Transition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sensor, at_ns, from_label, to_label, elevation
		 FROM phase_transitions
		 WHERE sensor = ?
		 ORDER BY at_ns DESC
		 LIMIT ?`,
		sensorName, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	transitions := []Transition{}
	for rows.Next() {
		var (
			t        Transition
			atNanos  int64
			from, to string
		)
		if err := rows.Scan(&t.ID, &t.Sensor, &atNanos, &from, &to, &t.Elevation); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		t.At = time.Unix(0, atNanos).UTC()
		if t.From, err = phase.ParseLabel(from); err != nil {
			return nil, err
		}
		if t.To, err = phase.ParseLabel(to); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
