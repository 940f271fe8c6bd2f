// Package peakdb persists named peak sets to SQLite so detected
// correlations can be re-plotted without re-running the upstream analysis.
package peakdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spectra-data/peakmap/internal/peaks"
)

type Store struct {
	*sql.DB
}

// SetInfo describes one stored peak set.
type SetInfo struct {
	ID        string
	Name      string
	PeakCount int
	CreatedAt time.Time
}

// Open opens (creating if necessary) a peak store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS peak_sets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS peaks (
			set_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			x DOUBLE NOT NULL,
			y DOUBLE NOT NULL,
			strength DOUBLE NOT NULL,
			x_label TEXT NOT NULL,
			y_label TEXT NOT NULL,
			color TEXT NOT NULL,
			PRIMARY KEY (set_id, ordinal),
			FOREIGN KEY(set_id) REFERENCES peak_sets(id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db}, nil
}

// SaveSet stores the peaks under a fresh set ID and returns it. Peak order
// is preserved via the ordinal column.
func (s *Store) SaveSet(name string, pks []peaks.Peak) (string, error) {
	id := uuid.NewString()

	tx, err := s.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO peak_sets (id, name) VALUES (?, ?)", id, name); err != nil {
		return "", fmt.Errorf("failed to insert peak set: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO peaks
		(set_id, ordinal, x, y, strength, x_label, y_label, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, p := range pks {
		if _, err := stmt.Exec(id, i, p.X, p.Y, p.CorrelationStrength, p.XLabel, p.YLabel, p.Color); err != nil {
			return "", fmt.Errorf("failed to insert peak %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// LoadSet returns the peaks of a set in their stored order.
func (s *Store) LoadSet(id string) ([]peaks.Peak, error) {
	var exists int
	if err := s.QueryRow("SELECT COUNT(*) FROM peak_sets WHERE id = ?", id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("peak set not found: %s", id)
	}

	rows, err := s.Query(`SELECT x, y, strength, x_label, y_label, color
		FROM peaks WHERE set_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pks []peaks.Peak
	for rows.Next() {
		var p peaks.Peak
		if err := rows.Scan(&p.X, &p.Y, &p.CorrelationStrength, &p.XLabel, &p.YLabel, &p.Color); err != nil {
			return nil, err
		}
		p.IdxX = -1
		p.IdxY = -1
		pks = append(pks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pks, nil
}

// ListSets returns all stored peak sets, most recent first.
func (s *Store) ListSets() ([]SetInfo, error) {
	rows, err := s.Query(`SELECT ps.id, ps.name, ps.created_at, COUNT(p.set_id)
		FROM peak_sets ps
		LEFT JOIN peaks p ON p.set_id = ps.id
		GROUP BY ps.id
		ORDER BY ps.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []SetInfo
	for rows.Next() {
		var info SetInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.CreatedAt, &info.PeakCount); err != nil {
			return nil, err
		}
		sets = append(sets, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}
