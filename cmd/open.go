// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"

	"irms/cli/internal/router"

	"github.com/spf13/cobra"
)

// openCmd navigates to an application path through the auth guard.
var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Navigate to a page of the recipe service",
	Long: `The open command resolves a path such as /profile against the route table and
runs the navigation guards. Pages that require authentication redirect to the
login page while you are logged out; the original path is kept so that
'irms login --redirect <path>' can send you back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		loc, err := a.router.Push(args[0])
		if err != nil {
			return err
		}
		printNavigation(cmd.OutOrStdout(), loc, a.cfg.LoginPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}

// printNavigation reports where a navigation ended, with a login hint when
// the guard sent it to loginPath.
func printNavigation(w io.Writer, loc router.Location, loginPath string) {
	fmt.Fprintf(w, "→ %s (%s)\n", loc.FullPath(), loc.Route.Name)
	target := loc.Query.Get(router.RedirectParam)
	if loc.Path != loginPath || target == "" {
		return
	}
	fmt.Fprintf(w, "🔒 %s requires authentication.\n", target)
	fmt.Fprintf(w, "   Run 'irms login --redirect %s' to continue.\n", target)
}
