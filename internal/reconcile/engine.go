package reconcile

import (
	"context"
	"log/slog"

	"rangepull/internal/api"
	"rangepull/internal/inventory"
)

// Missing is one session still needing download, with the halves that
// are actually absent flagged. Under the BOTH policy a half-saved
// session only fetches its absent half.
type Missing struct {
	Entry
	NeedPro   bool
	NeedRange bool
}

// Variants lists the ball types this item needs, pro first.
func (m Missing) Variants() []inventory.BallType {
	var out []inventory.BallType
	if m.NeedPro {
		out = append(out, inventory.BallPremium)
	}
	if m.NeedRange {
		out = append(out, inventory.BallRange)
	}
	return out
}

// Plan computes the minimal missing set for a policy given the local
// inventory. The result preserves activity-list order so it can be shown
// as a dry run before any network call.
func Plan(entries []Entry, pro, rng map[inventory.SessionKey]bool, policy inventory.BallType) []Missing {
	var missing []Missing
	for _, e := range entries {
		m := Missing{Entry: e}
		switch policy {
		case inventory.BallPremium:
			m.NeedPro = !pro[e.Key]
		case inventory.BallRange:
			m.NeedRange = !rng[e.Key]
		case inventory.BallBoth:
			m.NeedPro = !pro[e.Key]
			m.NeedRange = !rng[e.Key]
		}
		if m.NeedPro || m.NeedRange {
			missing = append(missing, m)
		}
	}
	return missing
}

// ShotFetcher is the slice of the API client the engine needs.
type ShotFetcher interface {
	FetchShots(ctx context.Context, activityID string, ball inventory.BallType) ([]api.Shot, error)
}

// ArtifactWriter persists one (session, variant) dataset.
type ArtifactWriter interface {
	Write(key inventory.SessionKey, ball inventory.BallType, shots []api.Shot) (string, error)
}

// Engine executes a plan sequentially.
type Engine struct {
	Fetcher ShotFetcher
	Writer  ArtifactWriter
	Log     *slog.Logger
}

// Summary reports what a run accomplished.
type Summary struct {
	Artifacts int // files written
	Shots     int // shots across all written artifacts
	Failed    int // (session, variant) pairs skipped on error
}

// Run fetches and exports every missing half in the plan. A failure on
// one item is logged, counted and skipped; the rest of the batch
// continues.
func (e *Engine) Run(ctx context.Context, plan []Missing) Summary {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}

	var sum Summary
	for _, item := range plan {
		for _, ball := range item.Variants() {
			shots, err := e.Fetcher.FetchShots(ctx, item.Activity.ID, ball)
			if err != nil {
				log.Error("fetch failed, skipping session variant",
					"session", item.Key, "ball", ball, "error", err)
				sum.Failed++
				continue
			}
			if len(shots) == 0 {
				log.Info("no shots in session variant", "session", item.Key, "ball", ball)
				continue
			}
			path, err := e.Writer.Write(item.Key, ball, shots)
			if err != nil {
				log.Error("export failed, skipping session variant",
					"session", item.Key, "ball", ball, "error", err)
				sum.Failed++
				continue
			}
			log.Info("saved session", "session", item.Key, "ball", ball,
				"shots", len(shots), "path", path)
			sum.Artifacts++
			sum.Shots += len(shots)
		}
	}
	return sum
}
