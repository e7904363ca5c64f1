package inventory

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Root resolves the directory exports live under for a user. An empty
// username keeps everything directly below dataDir.
func Root(dataDir, username string) string {
	if username == "" {
		return dataDir
	}
	return filepath.Join(dataDir, username)
}

// Scan walks the pro and range subdirectories and reports which session
// keys already have an artifact for each variant. It never fails the
// caller: unreadable directories and unrecognized filenames count as
// absent.
func Scan(dataDir, username string) (pro, rng map[SessionKey]bool) {
	pro = map[SessionKey]bool{}
	rng = map[SessionKey]bool{}
	root := Root(dataDir, username)

	scanDir(filepath.Join(root, BallPremium.Dir()), BallPremium, pro)
	scanDir(filepath.Join(root, BallRange.Dir()), BallRange, rng)
	return pro, rng
}

func scanDir(dir string, want BallType, out map[SessionKey]bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, ball, ok := ParseArtifactName(entry.Name())
		if !ok {
			slog.Debug("skipping unrecognized file in export dir", "dir", dir, "name", entry.Name())
			continue
		}
		if ball != want {
			continue
		}
		out[key] = true
	}
}
