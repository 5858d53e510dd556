package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var schemaBriefingFlag bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the sampled collection schema",
	Long: `Print each collection's field names with the type of the value found in
its first document. With --briefing, print the full agent instructions
instead, which embed the same schema.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaBriefingFlag, "briefing", false, "Print the agent briefing")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := newContext()
	defer cancel()

	engine, err := openEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close(context.Background())

	if schemaBriefingFlag {
		text, err := engine.Briefing(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}

	schemas, err := engine.CollectionSchemas(ctx)
	if err != nil {
		return err
	}
	return printValue(cmd.OutOrStdout(), schemas)
}
