// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"irms/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the session token and the cached profile.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session token",
	Long: `The logout command clears the current session: the access token is removed
from the configured storage backend and the cached profile is dropped.

The local session is always cleared, even if the storage backend cannot be
reached; in that case a warning is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.svc.Logout(cmd.Context()); err != nil {
			pterm.Warning.Println(logging.PresentError("could not remove the stored token", err))
		}
		fmt.Println("✅ Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
