package clean

import (
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/llm-repo-processor/pkg/textclean"
	"github.com/dtnitsch/llm-repo-processor/pkg/textenc"
	"github.com/urfave/cli/v2"
)

// CleanAction prints the cleaned form of each file argument, or of stdin
// when no files are given. Each input produces one output line.
func CleanAction(c *cli.Context) error {
	w := c.App.Writer

	if c.NArg() == 0 {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return writeCleaned(w, "<stdin>", data)
	}

	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to read %s: %v", path, err), 1)
		}
		if err := writeCleaned(w, path, data); err != nil {
			return err
		}
	}
	return nil
}

func writeCleaned(w io.Writer, name string, data []byte) error {
	text, err := textenc.Decode(name, data)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	_, err = fmt.Fprintln(w, textclean.Clean(text))
	return err
}
