package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rangepull/internal/inventory"
	"rangepull/internal/stats"
	"rangepull/internal/tokencache"
)

var statsBalls string

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsBalls, "balls", "premium", "measurement variant: premium or range")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize saved sessions per club",
	RunE: func(cmd *cobra.Command, args []string) error {
		ball, err := inventory.ParseBallType(statsBalls)
		if err != nil {
			return err
		}
		if ball == inventory.BallBoth {
			return fmt.Errorf("stats works on one variant at a time (premium or range)")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		username := resolveUser(tokencache.New(cfg.Auth.TokenDir, cfg.Auth.TokenTTL))

		report, err := stats.Compute(cfg.DataDir, username, ball)
		if err != nil {
			return err
		}
		if len(report.Sessions) == 0 {
			fmt.Println("No saved sessions — run 'rangepull pull --missing' first.")
			return nil
		}

		fmt.Printf("Sessions (%d):\n", len(report.Sessions))
		for _, s := range report.Sessions {
			fmt.Printf("  %-14s %4d shots\n", s.Key, s.Shots)
		}

		fmt.Printf("\n%-16s %6s %10s %10s %12s\n", "CLUB", "SHOTS", "AVG CARRY", "AVG TOTAL", "AVG SPEED")
		for _, c := range report.Clubs {
			fmt.Printf("%-16s %6d %10.1f %10.1f %12.1f\n",
				c.Club, c.Shots, c.AvgCarry, c.AvgTotal, c.AvgBallSpeed)
		}
		return nil
	},
}
