package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgonek/notion-md/projector"
)

var getCmd = &cobra.Command{
	Use:   "get <page-id-or-url>",
	Short: "Print a Notion page as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().Bool("block", false, "treat the id as a block instead of a page")
	getCmd.Flags().Int("max-chars", 0, "truncate output to this many characters (0 uses the config value)")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := newNotionClient()
	if err != nil {
		return err
	}

	maxChars, _ := cmd.Flags().GetInt("max-chars")
	if maxChars <= 0 {
		maxChars = cfg.Projection.MaxChars
	}
	asBlock, _ := cmd.Flags().GetBool("block")

	p := projector.New(client)
	var projection projector.Projection
	if asBlock {
		projection, err = p.Block(cmd.Context(), args[0], maxChars)
	} else {
		projection, err = p.Page(cmd.Context(), args[0], maxChars)
	}
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), projection.Markdown)
	return nil
}
