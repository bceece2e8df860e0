// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"irms/cli/internal/router"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the application's routes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		out, err := pterm.DefaultTable.
			WithHasHeader().
			WithData(routeTable(a.router.Routes())).
			Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func routeTable(routes []router.Route) pterm.TableData {
	data := pterm.TableData{{"Name", "Path", "Requires login"}}
	for _, r := range routes {
		auth := "no"
		if r.RequiresAuth {
			auth = "yes"
		}
		data = append(data, []string{r.Name, r.Path, auth})
	}
	return data
}
