// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"irms/cli/internal/auth"
	"irms/cli/internal/backend"

	"github.com/spf13/cobra"
)

// whoamiCmd validates the stored token by loading the profile it belongs to.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show current authenticated account",
	Long: `The whoami command loads the profile for the stored session token and prints it.

If the service no longer accepts the token the session is ended locally and
you are asked to log in again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if !a.sess.IsLoggedIn() {
			printNotLoggedIn()
			return nil
		}
		tok := a.sess.Token()
		if !a.svc.FetchUser(cmd.Context()) {
			fmt.Println(sessionEndedMessage(tok, time.Now()))
			fmt.Println("   Run 'irms login' to sign in again.")
			return nil
		}
		fmt.Print(formatProfile(a.sess.User()))
		if info, ok := auth.InspectToken(a.sess.Token()); ok && !info.ExpiresAt.IsZero() {
			fmt.Printf("   Session valid until: %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// sessionEndedMessage explains why the service refused tok: a JWT past its
// exp claim expired, anything else was revoked or is unknown to the service.
func sessionEndedMessage(tok string, now time.Time) string {
	if info, ok := auth.InspectToken(tok); ok && info.Expired(now) {
		return fmt.Sprintf("⌛ Your session expired at %s.", info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return "⌛ Your session is no longer valid."
}

// formatProfile renders the profile lines printed by whoami.
func formatProfile(p *backend.Profile) string {
	s := fmt.Sprintf("👤 Current user: %s\n   ID: %d\n", p.Name(), p.UserID)
	if !p.CreatedAt.IsZero() {
		s += fmt.Sprintf("   Member since: %s\n", p.CreatedAt.Format("2006-01-02"))
	}
	return s
}
