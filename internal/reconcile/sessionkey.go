// Package reconcile diffs the remote activity list against the locally
// saved artifacts and drives fetch+export for exactly the sessions that
// are still missing.
package reconcile

import (
	"log/slog"
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"rangepull/internal/api"
	"rangepull/internal/inventory"
)

// Entry is one remote activity with its derived session key.
type Entry struct {
	Activity api.Activity
	Key      inventory.SessionKey
	Time     time.Time
}

// AssignKeys derives the (date, ordinal) session key for each activity:
// bucket by UTC calendar day, rank ascending by time within the day,
// 1-based. Ties at identical timestamps keep the remote list's order
// (the sort is stable). Activities whose time cannot be parsed are
// dropped. The returned slice preserves the input order.
func AssignKeys(activities []api.Activity) []Entry {
	entries := make([]Entry, 0, len(activities))
	for _, a := range activities {
		t, ok := parseActivityTime(a.Time)
		if !ok {
			slog.Warn("skipping activity with unparseable time", "id", a.ID, "time", a.Time)
			continue
		}
		entries = append(entries, Entry{
			Activity: a,
			Time:     t,
			Key:      inventory.SessionKey{Date: t.UTC().Format("20060102")},
		})
	}

	// Per-day ranking over index slices so entries stay in input order.
	byDate := map[string][]int{}
	for i, e := range entries {
		byDate[e.Key.Date] = append(byDate[e.Key.Date], i)
	}
	for _, idxs := range byDate {
		sort.SliceStable(idxs, func(a, b int) bool {
			return entries[idxs[a]].Time.Before(entries[idxs[b]].Time)
		})
		for rank, i := range idxs {
			entries[i].Key.Number = rank + 1
		}
	}
	return entries
}

func parseActivityTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	// The service usually emits RFC 3339 but has shipped variants;
	// dateparse tolerates the lot.
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
