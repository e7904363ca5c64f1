package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rangepull/internal/tokencache"
)

var logoutAll bool

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every saved token")
}

var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove a saved token, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cache := tokencache.New(cfg.Auth.TokenDir, cfg.Auth.TokenTTL)

		username := flagUser
		if len(args) == 1 {
			username = args[0]
		}

		if logoutAll {
			username = ""
		} else if username == "" {
			names := cache.Usernames()
			if len(names) == 0 {
				fmt.Println("No saved tokens.")
				return nil
			}
			return fmt.Errorf("specify a username or --all (saved: %v)", names)
		}

		removed, err := cache.Invalidate(username)
		if err != nil {
			return err
		}
		switch {
		case !removed && username == "":
			fmt.Println("No saved tokens.")
		case !removed:
			fmt.Printf("No token found for %s\n", username)
		case username == "":
			fmt.Println("All tokens removed.")
		default:
			fmt.Printf("Token for %s removed.\n", username)
		}
		return nil
	},
}
