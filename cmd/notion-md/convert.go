package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jomei/notionapi"
	"github.com/spf13/cobra"

	"github.com/rgonek/notion-md/converter"
	"github.com/rgonek/notion-md/mdconverter"
	"github.com/rgonek/notion-md/notion"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input-file>",
	Short: "Convert a local file between Notion block JSON and Markdown",
	Long: `Convert Notion block JSON (an array of blocks, as in an append request)
to Markdown. With --reverse, convert Markdown to Notion block JSON.

Use "-" to read from stdin. Conversion warnings are written to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Bool("reverse", false, "convert Markdown to Notion block JSON")
	convertCmd.Flags().Bool("strict", false, "fail on block types Markdown cannot express")
	convertCmd.Flags().Bool("keep-front-matter", false, "treat front matter as content instead of stripping it")
	rootCmd.AddCommand(convertCmd)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func runConvert(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	reverse, _ := cmd.Flags().GetBool("reverse")
	if reverse {
		keep, _ := cmd.Flags().GetBool("keep-front-matter")
		return markdownToBlocks(cmd, string(data), keep)
	}

	strict, _ := cmd.Flags().GetBool("strict")
	return blocksToMarkdown(cmd, data, strict)
}

func markdownToBlocks(cmd *cobra.Command, markdown string, keepFrontMatter bool) error {
	mdCfg := mdconverter.Config{}
	if keepFrontMatter {
		mdCfg.FrontMatter = mdconverter.FrontMatterKeep
	}
	conv, err := mdconverter.New(mdCfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	result, err := conv.ConvertWithContext(cmd.Context(), markdown)
	if err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	printWarnings(cmd, result.Warnings)

	payload := notion.ToNotion(result.Blocks)
	if payload == nil {
		payload = []notionapi.Block{}
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting block JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return nil
}

func blocksToMarkdown(cmd *cobra.Command, data []byte, strict bool) error {
	var payload notionapi.Blocks
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing block JSON: %w", err)
	}

	renderCfg := converter.Config{}
	if strict {
		renderCfg.UnknownBlocks = converter.UnknownError
	}
	conv, err := converter.New(renderCfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	result, err := conv.Convert(notion.FromNotionBlocks(payload))
	if err != nil {
		return fmt.Errorf("converting blocks: %w", err)
	}
	printWarnings(cmd, result.Warnings)

	fmt.Fprint(cmd.OutOrStdout(), result.Markdown)
	return nil
}

func printWarnings(cmd *cobra.Command, warnings []converter.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
	}
}
