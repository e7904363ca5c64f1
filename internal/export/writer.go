// Package export serializes one session's shots into a CSV artifact.
// Writing is idempotent: the filename is a pure function of the session
// key and ball type, and re-running an export overwrites the file with
// identical content.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"rangepull/internal/api"
	"rangepull/internal/inventory"
)

// Writer persists artifacts under DataDir, optionally namespaced by
// username.
type Writer struct {
	DataDir  string
	Username string
	Log      *slog.Logger
}

func (w *Writer) log() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}

// Path returns where the artifact for (key, ball) lives.
func (w *Writer) Path(key inventory.SessionKey, ball inventory.BallType) string {
	root := inventory.Root(w.DataDir, w.Username)
	return filepath.Join(root, ball.Dir(), inventory.ArtifactName(key, ball))
}

// Write serializes shots into the artifact for (key, ball) and returns
// its path. Shots are sorted ascending by their per-shot time (stable,
// so shots without a time keep their incoming order) and the ordinal
// column is re-derived from the sorted position. A row that cannot be
// rendered is logged and skipped; it never aborts the file.
func (w *Writer) Write(key inventory.SessionKey, ball inventory.BallType, shots []api.Shot) (string, error) {
	path := w.Path(key, ball)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	ordered := make([]api.Shot, len(shots))
	copy(ordered, shots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time < ordered[j].Time
	})

	tmp, err := os.CreateTemp(dir, ".rangepull-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	cw := csv.NewWriter(tmp)
	if err := cw.Write(Header()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write header: %w", err)
	}

	ordinal := 0
	for _, shot := range ordered {
		row, err := shotRow(ordinal+1, shot)
		if err != nil {
			w.log().Warn("skipping unrenderable shot", "session", key, "error", err)
			continue
		}
		if err := cw.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return "", fmt.Errorf("write row: %w", err)
		}
		ordinal++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("flush artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("replace artifact: %w", err)
	}
	return path, nil
}

func shotRow(ordinal int, shot api.Shot) ([]string, error) {
	club := "Unknown"
	if shot.Club != nil {
		club = *shot.Club
	}

	row := make([]string, 0, 3+len(MeasurementFields))
	row = append(row, strconv.Itoa(ordinal), club, shot.BayName)

	for _, field := range MeasurementFields {
		value, err := renderValue(shot.Measurement[field])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		row = append(row, value)
	}
	return row, nil
}

// renderValue formats a single cell. Missing values become an explicit
// empty cell so every row has the same column count.
func renderValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unexpected value shape %T", v)
	}
}
