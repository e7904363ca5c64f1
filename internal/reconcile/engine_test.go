package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rangepull/internal/api"
	"rangepull/internal/inventory"
)

func entry(id, date string, number int) Entry {
	ts, _ := time.Parse("20060102", date)
	return Entry{
		Activity: api.Activity{ID: id, Kind: api.KindRangePractice},
		Key:      inventory.SessionKey{Date: date, Number: number},
		Time:     ts,
	}
}

func TestPlanPremiumOnlyMissing(t *testing.T) {
	entries := []Entry{
		entry("a1", "20240501", 1),
		entry("a2", "20240501", 2),
	}
	pro := map[inventory.SessionKey]bool{{Date: "20240501", Number: 1}: true}

	plan := Plan(entries, pro, nil, inventory.BallPremium)
	require.Len(t, plan, 1)
	require.Equal(t, "a2", plan[0].Activity.ID)
	require.True(t, plan[0].NeedPro)
	require.False(t, plan[0].NeedRange)
}

func TestPlanBothFetchesOnlyAbsentHalf(t *testing.T) {
	entries := []Entry{entry("a1", "20240501", 1)}
	pro := map[inventory.SessionKey]bool{{Date: "20240501", Number: 1}: true}

	plan := Plan(entries, pro, nil, inventory.BallBoth)
	require.Len(t, plan, 1)
	require.False(t, plan[0].NeedPro, "pro half already saved")
	require.True(t, plan[0].NeedRange)
	require.Equal(t, []inventory.BallType{inventory.BallRange}, plan[0].Variants())
}

func TestPlanFullySavedSessionExcluded(t *testing.T) {
	entries := []Entry{entry("a1", "20240501", 1)}
	saved := map[inventory.SessionKey]bool{{Date: "20240501", Number: 1}: true}

	require.Empty(t, Plan(entries, saved, saved, inventory.BallBoth))
}

func TestPlanPreservesListOrder(t *testing.T) {
	entries := []Entry{
		entry("a3", "20240503", 1),
		entry("a1", "20240501", 1),
		entry("a2", "20240502", 1),
	}
	plan := Plan(entries, nil, nil, inventory.BallPremium)
	require.Len(t, plan, 3)
	require.Equal(t, "a3", plan[0].Activity.ID)
	require.Equal(t, "a1", plan[1].Activity.ID)
	require.Equal(t, "a2", plan[2].Activity.ID)
}

type stubFetcher struct {
	failFor map[string]bool
	emptyID string
	calls   []string
}

func (s *stubFetcher) FetchShots(ctx context.Context, activityID string, ball inventory.BallType) ([]api.Shot, error) {
	s.calls = append(s.calls, fmt.Sprintf("%s/%s", activityID, ball))
	if s.failFor[activityID] {
		return nil, errors.New("boom")
	}
	if activityID == s.emptyID {
		return nil, nil
	}
	club := "Driver"
	return []api.Shot{
		{Club: &club, Time: "2024-05-01T08:00:00Z", Measurement: map[string]any{}},
		{Club: &club, Time: "2024-05-01T08:00:30Z", Measurement: map[string]any{}},
	}, nil
}

type stubWriter struct {
	failFor map[inventory.SessionKey]bool
	written []string
}

func (s *stubWriter) Write(key inventory.SessionKey, ball inventory.BallType, shots []api.Shot) (string, error) {
	if s.failFor[key] {
		return "", errors.New("disk full")
	}
	name := inventory.ArtifactName(key, ball)
	s.written = append(s.written, name)
	return name, nil
}

func TestRunExportsWholePlan(t *testing.T) {
	fetcher := &stubFetcher{}
	writer := &stubWriter{}
	engine := &Engine{Fetcher: fetcher, Writer: writer}

	plan := []Missing{
		{Entry: entry("a1", "20240501", 1), NeedPro: true, NeedRange: true},
		{Entry: entry("a2", "20240502", 1), NeedPro: true},
	}
	sum := engine.Run(context.Background(), plan)

	require.Equal(t, Summary{Artifacts: 3, Shots: 6}, sum)
	require.Equal(t, []string{
		"trackman_20240501_session1_pro.csv",
		"trackman_20240501_session1_range.csv",
		"trackman_20240502_session1_pro.csv",
	}, writer.written)
}

func TestRunIsolatesFetchFailures(t *testing.T) {
	fetcher := &stubFetcher{failFor: map[string]bool{"a3": true}}
	writer := &stubWriter{}
	engine := &Engine{Fetcher: fetcher, Writer: writer}

	var plan []Missing
	for i := 1; i <= 5; i++ {
		plan = append(plan, Missing{
			Entry:   entry(fmt.Sprintf("a%d", i), "20240501", i),
			NeedPro: true,
		})
	}
	sum := engine.Run(context.Background(), plan)

	require.Equal(t, 4, sum.Artifacts, "the other four sessions still export")
	require.Equal(t, 1, sum.Failed)
	require.Len(t, fetcher.calls, 5, "failure must not stop the batch")
}

func TestRunCountsWriteFailures(t *testing.T) {
	fetcher := &stubFetcher{}
	writer := &stubWriter{failFor: map[inventory.SessionKey]bool{{Date: "20240501", Number: 1}: true}}
	engine := &Engine{Fetcher: fetcher, Writer: writer}

	sum := engine.Run(context.Background(), []Missing{
		{Entry: entry("a1", "20240501", 1), NeedPro: true},
		{Entry: entry("a2", "20240502", 1), NeedPro: true},
	})
	require.Equal(t, Summary{Artifacts: 1, Shots: 2, Failed: 1}, sum)
}

func TestRunSkipsEmptySessions(t *testing.T) {
	fetcher := &stubFetcher{emptyID: "a1"}
	writer := &stubWriter{}
	engine := &Engine{Fetcher: fetcher, Writer: writer}

	sum := engine.Run(context.Background(), []Missing{
		{Entry: entry("a1", "20240501", 1), NeedPro: true},
	})
	require.Equal(t, Summary{}, sum, "empty sessions neither write nor fail")
	require.Empty(t, writer.written)
}
