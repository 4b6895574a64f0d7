/*
Copyright © 2026 gemrag authors
*/
package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// storesCmd represents the stores command
var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List file search stores",
	Args:  cobra.NoArgs,
	RunE:  RunStores,
}

func init() {
	rootCmd.AddCommand(storesCmd)
}

func RunStores(cmd *cobra.Command, args []string) error {
	service, err := newFileSearchService()
	if err != nil {
		return err
	}

	stores, err := service.ListStores(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tACTIVE DOCS\tCREATED")
	for _, s := range stores {
		if s == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.Name, s.DisplayName, s.ActiveDocumentsCount, s.CreateTime.Format(time.RFC3339))
	}
	return w.Flush()
}
