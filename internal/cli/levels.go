package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flamesplit/pkg/errors"
	"github.com/matzehuels/flamesplit/pkg/pipeline"
	"github.com/matzehuels/flamesplit/pkg/tile"
)

// levelsCommand creates the levels command.
func (c *CLI) levelsCommand() *cobra.Command {
	var maxLevel int

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List the grid levels a scene can be split into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max") {
				cfg, err := c.config()
				if err != nil {
					return err
				}
				maxLevel = cfg.Split.MaxLevel
			}
			if maxLevel > tile.LevelCeiling {
				return errors.New(errors.ErrCodeInvalidLevel, "max level %d exceeds %d", maxLevel, tile.LevelCeiling)
			}
			fmt.Println(levelsTable(maxLevel))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxLevel, "max", pipeline.DefaultMaxLevel, "highest level to list")

	return cmd
}

// levelsTable renders levels 1..maxLevel.
func levelsTable(maxLevel int) string {
	levels := pipeline.Levels(maxLevel)
	rows := make([][]string, len(levels))
	for i, l := range levels {
		rows[i] = []string{"", strconv.Itoa(l.Level), l.Label(), strconv.Itoa(l.TileCount())}
	}
	return levelTable(rows, nil).Render()
}
