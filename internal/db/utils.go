package db

import (
	"errors"
	"fmt"

	dbpkg "github.com/dtnitsch/llm-repo-processor/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetRunIDOrLatest returns the run id (or id prefix) from args, or the latest
// run if none was given.
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}

	runs, err := database.ListRuns(1)
	if err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	if len(runs) == 0 {
		return "", errors.New("no runs found. Run 'lrp process --db ...' first")
	}
	return runs[0].RunID, nil
}

// ShortID abbreviates a run id for tables.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
