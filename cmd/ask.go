/*
Copyright © 2026 gemrag authors
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var (
	askStore string
	askJSON  bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against a file search store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  RunAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askStore, "store", "s", "", "File search store name, e.g. fileSearchStores/abc (required)")
	askCmd.MarkFlagRequired("store")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the answer in the HTTP chat response shape")
}

func RunAsk(cmd *cobra.Command, args []string) error {
	service, err := newFileSearchService()
	if err != nil {
		return err
	}

	answer, err := service.Answer(cmd.Context(), strings.Join(args, " "), askStore)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode([]interface{}{answer.Text, answer.Citations})
	}

	if answer.Text != nil {
		fmt.Fprintln(out, *answer.Text)
	}
	for i, c := range answer.Citations {
		title, uri, ok := citationSource(c)
		if !ok {
			continue
		}
		if uri != "" {
			fmt.Fprintf(out, "[%d] %s (%s)\n", i+1, title, uri)
			continue
		}
		fmt.Fprintf(out, "[%d] %s\n", i+1, title)
	}
	return nil
}

func citationSource(c *genai.GroundingChunk) (title, uri string, ok bool) {
	switch {
	case c == nil:
		return "", "", false
	case c.RetrievedContext != nil:
		return c.RetrievedContext.Title, c.RetrievedContext.URI, true
	case c.Web != nil:
		return c.Web.Title, c.Web.URI, true
	}
	return "", "", false
}
