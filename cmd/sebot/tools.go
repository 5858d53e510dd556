package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sebot/internal/dispatch"
)

var toolsFormatFlag string

var toolsCmd = &cobra.Command{
	Use:   "tools [name]",
	Short: "List the function catalog",
	Long: `List the functions agents can call.

Without arguments, prints a summary table. With a function name, prints that
function's full definition. --format json or yaml prints the definitions in
the shape handed to an assistant.

Examples:
  sebot tools
  sebot tools analyze_developer_expertise
  sebot tools --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().StringVar(&toolsFormatFlag, "format", "table", "Output format: table, json or yaml")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	catalog := dispatch.Catalog()
	if len(args) == 1 {
		f, ok := dispatch.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown function %q", args[0])
		}
		catalog = []dispatch.Function{f}
		if toolsFormatFlag == "table" {
			toolsFormatFlag = "yaml"
		}
	}

	out := cmd.OutOrStdout()
	switch toolsFormatFlag {
	case "table":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tREQUIRED\tDESCRIPTION")
		for _, f := range catalog {
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, strings.Join(requiredParams(f), ","), firstSentence(f.Description))
		}
		return w.Flush()
	case "json":
		if len(args) == 1 {
			return printValue(out, catalog[0])
		}
		return printValue(out, dispatch.AssistantTools())
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		if len(args) == 1 {
			return enc.Encode(catalog[0])
		}
		return enc.Encode(catalog)
	}
	return fmt.Errorf("unsupported format: %s", toolsFormatFlag)
}

func requiredParams(f dispatch.Function) []string {
	var names []string
	switch req := f.Parameters["required"].(type) {
	case []string:
		names = append(names, req...)
	case []interface{}:
		for _, r := range req {
			names = append(names, fmt.Sprint(r))
		}
	}
	sort.Strings(names)
	return names
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
