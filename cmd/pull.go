package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rangepull/internal/export"
	"rangepull/internal/inventory"
	"rangepull/internal/reconcile"
)

var (
	pullAll     bool
	pullMissing bool
	pullBalls   string
	pullDryRun  bool
	pullYes     bool
)

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().BoolVar(&pullAll, "all", false, "download every range-practice session")
	pullCmd.Flags().BoolVar(&pullMissing, "missing", false, "download only sessions without a local artifact")
	pullCmd.Flags().StringVar(&pullBalls, "balls", "premium", "measurement variant: premium, range or both")
	pullCmd.Flags().BoolVar(&pullDryRun, "dry-run", false, "show what would be downloaded, fetch nothing")
	pullCmd.Flags().BoolVarP(&pullYes, "yes", "y", false, "skip the confirmation prompt")
}

var pullCmd = &cobra.Command{
	Use:   "pull [activity-number]",
	Short: "Download shot data and save it as CSV artifacts",
	Long: `pull downloads per-shot measurement data for range-practice sessions.

Select one session by its number from 'rangepull activities', or use
--all for everything, or --missing for only sessions that have no local
artifact yet. With --balls both, a session that already has one half
saved only downloads the other half.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := inventory.ParseBallType(pullBalls)
		if err != nil {
			return err
		}
		if pullMissing {
			// Missing-mode default matches the interactive original:
			// fill in whichever halves are absent.
			if !cmd.Flags().Changed("balls") {
				policy = inventory.BallBoth
			}
		}
		selectors := 0
		if pullAll {
			selectors++
		}
		if pullMissing {
			selectors++
		}
		if len(args) == 1 {
			selectors++
		}
		if selectors != 1 {
			return fmt.Errorf("pick exactly one of: an activity number, --all, --missing")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)

		username, err := client.Authenticate(cmd.Context(), resolveUser(client.Cache), "")
		if err != nil {
			return err
		}

		activities, err := client.RangePracticeActivities(cmd.Context(), 0)
		if err != nil {
			return err
		}
		if len(activities) == 0 {
			fmt.Println("No range practice activities found.")
			return nil
		}

		entries := reconcile.AssignKeys(activities)
		pro, rng := inventory.Scan(cfg.DataDir, username)

		var plan []reconcile.Missing
		switch {
		case pullMissing:
			plan = reconcile.Plan(entries, pro, rng, policy)
		case pullAll:
			plan = explicitPlan(entries, policy)
		default:
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > len(entries) {
				return fmt.Errorf("invalid activity number %q (1-%d)", args[0], len(entries))
			}
			plan = explicitPlan(entries[n-1:n], policy)
		}

		if len(plan) == 0 {
			fmt.Println("Nothing to download — all selected sessions are already saved.")
			return nil
		}

		fmt.Printf("Sessions to download (%d):\n", len(plan))
		for _, item := range plan {
			fmt.Printf("  %s  %s  needs %s\n",
				item.Time.UTC().Format("2006-01-02"), item.Key, needsLabel(item))
		}
		if pullDryRun {
			return nil
		}

		if !pullYes {
			if answer := prompt("Download and save these sessions? (y/n): "); !strings.EqualFold(answer, "y") {
				return nil
			}
		}

		engine := &reconcile.Engine{
			Fetcher: client,
			Writer:  &export.Writer{DataDir: cfg.DataDir, Username: username},
		}
		sum := engine.Run(cmd.Context(), plan)

		fmt.Printf("\nSaved %d artifacts (%d shots)", sum.Artifacts, sum.Shots)
		if sum.Failed > 0 {
			fmt.Printf(", %d failed and were skipped", sum.Failed)
		}
		fmt.Println()
		return nil
	},
}

// explicitPlan marks the requested halves for every entry, regardless of
// local state. Explicit selection overwrites; export is idempotent.
func explicitPlan(entries []reconcile.Entry, policy inventory.BallType) []reconcile.Missing {
	plan := make([]reconcile.Missing, 0, len(entries))
	for _, e := range entries {
		plan = append(plan, reconcile.Missing{
			Entry:     e,
			NeedPro:   policy == inventory.BallPremium || policy == inventory.BallBoth,
			NeedRange: policy == inventory.BallRange || policy == inventory.BallBoth,
		})
	}
	return plan
}

func needsLabel(m reconcile.Missing) string {
	var parts []string
	if m.NeedPro {
		parts = append(parts, "PREMIUM")
	}
	if m.NeedRange {
		parts = append(parts, "RANGE")
	}
	return strings.Join(parts, "/")
}
