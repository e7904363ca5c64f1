package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"rangepull/internal/api"
	"rangepull/internal/auth"
)

var (
	loginPassword string
	loginManual   bool
	loginCopyURL  bool
	loginHeadful  bool
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password for automatic form fill")
	loginCmd.Flags().BoolVar(&loginManual, "manual", false, "print the authorization URL and paste the token by hand")
	loginCmd.Flags().BoolVar(&loginCopyURL, "copy-url", false, "with --manual, copy the authorization URL to the clipboard")
	loginCmd.Flags().BoolVar(&loginHeadful, "headful", false, "show the browser window during login")
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Authenticate and cache a bearer token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if loginHeadful {
			cfg.Browser.Headless = false
		}

		username := flagUser
		if len(args) == 1 {
			username = args[0]
		}

		client := newClient(cfg)

		if loginManual {
			return manualLogin(cmd.Context(), client, username)
		}

		fmt.Println("Opening browser for authentication...")
		name, err := client.Authenticate(cmd.Context(), username, loginPassword)
		if err != nil {
			return err
		}
		if name == "" {
			// Token works but no identity label was recoverable; ask so
			// the cache entry has a key.
			name = prompt("Enter username/email to save the token under: ")
			if name != "" {
				if err := client.Cache.Save(name, client.Token()); err != nil {
					return fmt.Errorf("save token: %w", err)
				}
			}
		}
		if name != "" {
			fmt.Printf("Authenticated as %s\n", name)
		} else {
			fmt.Println("Authenticated (token not cached — no username given)")
		}
		return nil
	},
}

// manualLogin prints the PKCE authorization URL for the user to open
// themselves, then reads the recovered token from stdin. Useful where
// no browser can be driven (containers, SSH sessions).
func manualLogin(ctx context.Context, client *api.Client, username string) error {
	verifier, err := auth.GenerateVerifier()
	if err != nil {
		return err
	}
	authURL := client.Auth.URL(auth.Challenge(verifier))

	fmt.Println("Open this URL, log in, and copy the Bearer token from the portal's requests:")
	fmt.Printf("\n%s\n\n", authURL)
	if loginCopyURL {
		if err := clipboard.WriteAll(authURL); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not copy to clipboard: %v\n", err)
		} else {
			fmt.Println("URL copied to clipboard.")
		}
	}

	token := strings.TrimPrefix(prompt("Paste bearer token: "), "Bearer ")
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("no token supplied")
	}

	client.SetToken(token)
	if !client.TestConnection(ctx) {
		return api.ErrAuthRejected
	}

	if username == "" {
		username = prompt("Enter username/email to save the token under: ")
	}
	if username != "" {
		if err := client.Cache.Save(username, token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Printf("Token saved for %s\n", username)
	}
	return nil
}

func prompt(msg string) string {
	fmt.Print(msg)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
