package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/wirehttp/router"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	Long:  `Print the registered routes, in match order, as YAML.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := buildTable()
		if err != nil {
			return err
		}
		return writeRoutes(cmd.OutOrStdout(), table)
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func writeRoutes(w io.Writer, table *router.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]router.RouteInfo{"routes": table.Routes()}); err != nil {
		return fmt.Errorf("encode routes: %w", err)
	}
	return enc.Close()
}
