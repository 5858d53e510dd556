package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sebot/internal/dispatch"
)

var callBatchFlag string

var callCmd = &cobra.Command{
	Use:   "call <function> [arguments]",
	Short: "Call one catalog function and print its result",
	Long: `Call a catalog function the way an agent would and print the JSON result.

Arguments are a JSON object, given inline or as "-" to read stdin. With
--batch, a file of the form {"run_id": ..., "tool_calls": [...]} is run as
one batch and the tool outputs are printed once they are ready or the
dispatch wait timeout elapses.

Examples:
  sebot call count_issues '{"project_name": "zookeeper", "status": "Open"}'
  sebot call get_issue_details '{"issue_identifier": "ZOOKEEPER-1"}'
  echo '{"project_name": "zookeeper"}' | sebot call get_project_assignees -
  sebot call --batch calls.json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if callBatchFlag != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVar(&callBatchFlag, "batch", "", "Run a batch of tool calls from a file (- for stdin)")
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
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

	action, err := callAction(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	batch := dispatch.NewBatch(dispatch.NewRouter(engine, logger))
	if err := batch.Submit(ctx, *action); err != nil {
		return err
	}
	outputs := batch.Wait(ctx, cfg.WaitTimeout())

	out := cmd.OutOrStdout()
	if callBatchFlag == "" {
		if len(outputs) == 0 {
			return fmt.Errorf("no output within %s", cfg.WaitTimeout())
		}
		return printJSON(out, []byte(outputs[0].Output))
	}
	if len(outputs) < len(action.ToolCalls) {
		logger.Warn("Returning partial outputs",
			"ready", len(outputs),
			"requested", len(action.ToolCalls),
		)
	}
	return printValue(out, outputs)
}

// callAction builds the batch to run from the command line or --batch file.
func callAction(stdin io.Reader, args []string) (*dispatch.RequiresAction, error) {
	if callBatchFlag != "" {
		data, err := readSource(stdin, callBatchFlag)
		if err != nil {
			return nil, err
		}
		var action dispatch.RequiresAction
		if err := json.Unmarshal(data, &action); err != nil {
			return nil, fmt.Errorf("invalid batch file: %w", err)
		}
		if action.RunID == "" {
			action.RunID = "run_" + uuid.NewString()
		}
		for i := range action.ToolCalls {
			if action.ToolCalls[i].ID == "" {
				action.ToolCalls[i].ID = "call_" + uuid.NewString()
			}
		}
		return &action, nil
	}

	arguments := "{}"
	if len(args) > 1 {
		data, err := readSource(stdin, args[1])
		if err != nil {
			return nil, err
		}
		arguments = string(data)
	}
	return &dispatch.RequiresAction{
		RunID: "run_" + uuid.NewString(),
		ToolCalls: []dispatch.ToolCall{{
			ID:        "call_" + uuid.NewString(),
			Name:      args[0],
			Arguments: arguments,
		}},
	}, nil
}

// readSource returns stdin for "-", the contents of a file for --batch and
// the literal text otherwise.
func readSource(stdin io.Reader, src string) ([]byte, error) {
	if src == "-" {
		return io.ReadAll(stdin)
	}
	if callBatchFlag != "" {
		return os.ReadFile(src)
	}
	return []byte(src), nil
}
