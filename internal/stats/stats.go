// Package stats computes per-club and per-session aggregates over the
// exported artifacts. Artifacts are loaded into an in-memory SQLite
// database so the aggregation is plain SQL.
package stats

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"rangepull/internal/inventory"
)

const schema = `
CREATE TABLE shots (
	date       TEXT NOT NULL,
	session    INTEGER NOT NULL,
	club       TEXT NOT NULL,
	carry      REAL,
	total      REAL,
	ball_speed REAL
);
CREATE INDEX idx_shots_club ON shots(club);
`

// ClubStat is the aggregate view for one club.
type ClubStat struct {
	Club         string
	Shots        int
	AvgCarry     float64
	AvgTotal     float64
	AvgBallSpeed float64
}

// SessionStat is the shot count for one saved session.
type SessionStat struct {
	Key   inventory.SessionKey
	Shots int
}

// Report is everything the stats command renders.
type Report struct {
	Clubs    []ClubStat
	Sessions []SessionStat
}

// Compute loads every artifact for (username, ball) and aggregates it.
// Individual artifacts that fail to parse are skipped.
func Compute(dataDir, username string, ball inventory.BallType) (*Report, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create stats schema: %w", err)
	}

	pro, rng := inventory.Scan(dataDir, username)
	keys := pro
	if ball == inventory.BallRange {
		keys = rng
	}

	root := inventory.Root(dataDir, username)
	loaded := 0
	for key := range keys {
		path := filepath.Join(root, ball.Dir(), inventory.ArtifactName(key, ball))
		if err := loadArtifact(db, key, path); err != nil {
			slog.Warn("skipping unreadable artifact", "path", path, "error", err)
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return &Report{}, nil
	}

	report := &Report{}
	if report.Clubs, err = clubStats(db); err != nil {
		return nil, err
	}
	if report.Sessions, err = sessionStats(db); err != nil {
		return nil, err
	}
	return report, nil
}

func loadArtifact(db *sql.DB, key inventory.SessionKey, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[name] = i
	}
	clubIdx, ok := cols["Club"]
	if !ok {
		return fmt.Errorf("no Club column in %s", filepath.Base(path))
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO shots (date, session, club, carry, total, ball_speed) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, row := range records[1:] {
		club := cell(row, clubIdx)
		if club == "" {
			club = "Unknown"
		}
		_, err := stmt.Exec(key.Date, key.Number, club,
			numCell(row, cols, "carry"),
			numCell(row, cols, "total"),
			numCell(row, cols, "ballSpeed"))
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func numCell(row []string, cols map[string]int, name string) any {
	idx, ok := cols[name]
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(cell(row, idx), 64)
	if err != nil {
		return nil
	}
	return f
}

func clubStats(db *sql.DB) ([]ClubStat, error) {
	rows, err := db.Query(`
		SELECT club, COUNT(*),
		       COALESCE(AVG(carry), 0),
		       COALESCE(AVG(total), 0),
		       COALESCE(AVG(ball_speed), 0)
		FROM shots
		GROUP BY club
		ORDER BY COUNT(*) DESC, club`)
	if err != nil {
		return nil, fmt.Errorf("club stats: %w", err)
	}
	defer rows.Close()

	var out []ClubStat
	for rows.Next() {
		var s ClubStat
		if err := rows.Scan(&s.Club, &s.Shots, &s.AvgCarry, &s.AvgTotal, &s.AvgBallSpeed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func sessionStats(db *sql.DB) ([]SessionStat, error) {
	rows, err := db.Query(`
		SELECT date, session, COUNT(*)
		FROM shots
		GROUP BY date, session
		ORDER BY date, session`)
	if err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	defer rows.Close()

	var out []SessionStat
	for rows.Next() {
		var s SessionStat
		if err := rows.Scan(&s.Key.Date, &s.Key.Number, &s.Shots); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
