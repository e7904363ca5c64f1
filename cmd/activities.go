package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rangepull/internal/api"
	"rangepull/internal/inventory"
	"rangepull/internal/reconcile"
)

var activitiesBays bool

func init() {
	rootCmd.AddCommand(activitiesCmd)
	activitiesCmd.Flags().BoolVar(&activitiesBays, "bays", false, "also show the facility/bay overview")
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List range-practice activities and their local state",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		fmt.Printf("%-4s %-12s %-10s %-8s %s\n", "#", "DATE", "SESSION", "SAVED", "ID")
		for i, e := range entries {
			fmt.Printf("%-4d %-12s %-10s %-8s %s\n",
				i+1,
				e.Time.UTC().Format("2006-01-02"),
				fmt.Sprintf("#%d", e.Key.Number),
				savedLabel(pro[e.Key], rng[e.Key]),
				e.Activity.ID,
			)
		}

		if activitiesBays {
			return printBays(cmd, client)
		}
		return nil
	},
}

func savedLabel(hasPro, hasRange bool) string {
	switch {
	case hasPro && hasRange:
		return "both"
	case hasPro:
		return "pro"
	case hasRange:
		return "range"
	default:
		return "-"
	}
}

func printBays(cmd *cobra.Command, client *api.Client) error {
	overview, err := client.FetchRangeOverview(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println()
	for _, f := range overview.Facilities {
		fmt.Printf("Facility: %s (%d bays)\n", f.Name, len(f.Bays))
	}
	if overview.CurrentBay != nil {
		fmt.Printf("Current bay: %s (#%d)\n", overview.CurrentBay.Name, overview.CurrentBay.Number)
	}
	for _, b := range overview.AvailableBays {
		fmt.Printf("  available: %-20s #%-4d %s\n", b.Name, b.Number, b.Status)
	}
	return nil
}
