package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/term"
)

var noColorFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable JSON syntax highlighting")
}

// colorize reports whether w is a terminal that should get highlighted output.
func colorize(w io.Writer) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printJSON indents raw JSON and writes it to w, highlighted on a terminal.
// Input that is not valid JSON is written unchanged.
func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	buf.WriteByte('\n')

	if colorize(w) {
		if err := quick.Highlight(w, buf.String(), "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// printValue marshals v and prints it with printJSON.
func printValue(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return printJSON(w, data)
}
