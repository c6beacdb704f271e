package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flamesplit/pkg/cache"
	"github.com/matzehuels/flamesplit/pkg/errors"
	"github.com/matzehuels/flamesplit/pkg/flame"
	"github.com/matzehuels/flamesplit/pkg/history"
	"github.com/matzehuels/flamesplit/pkg/pipeline"
)

// stdio is the path that selects stdin for input and stdout for output.
const stdio = "-"

type splitOpts struct {
	level     int
	output    string
	strict    bool
	noCache   bool
	refresh   bool
	noHistory bool

	// pick asks for the level interactively.
	pick bool
}

// splitCommand creates the split command.
func (c *CLI) splitCommand() *cobra.Command {
	var opts splitOpts

	cmd := &cobra.Command{
		Use:   "split <scene.flame>",
		Short: "Split every flame of a scene into a tile grid",
		Long: `Split replaces every <flame> in a scene with a format x format grid of tiles,
where format is 2^level. Each tile renders one cell of the original image.

Without --level, an interactive picker is shown when running in a terminal;
otherwise level 1 (2x2) is used. Flames that cannot be split are kept unchanged
and reported.

Use "-" to read the scene from stdin or to write the result to stdout.`,
		Example: `  flamesplit split scene.flame --level 2
  flamesplit split scene.flame -o tiles.flame --strict
  cat scene.flame | flamesplit split - -l 3 -o - > tiles.flame`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.pick = !cmd.Flags().Changed("level") && args[0] != stdio &&
				isTerminal(os.Stdin) && isTerminal(os.Stdout)
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runSplit(ctx, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.level, "level", "l", pipeline.DefaultLevel, "grid level: the scene is cut into 2^level x 2^level tiles")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <name>_<grid>.flame next to the input)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "skip flames whose numbers carry trailing garbage")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the split cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results and store a fresh split")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record the split in history")

	return cmd
}

func (c *CLI) runSplit(ctx context.Context, input string, opts splitOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}

	data, name, err := readScene(input)
	if err != nil {
		return err
	}

	if opts.pick {
		level, ok, err := pickLevel(name, cfg.Split.MaxLevel)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Cancelled")
			return nil
		}
		opts.level = level
	}

	policy := cfg.Split.Policy
	if opts.strict {
		policy = string(flame.PolicyStrict)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	res, err := runner.Split(ctx, data, pipeline.Options{
		Level:    opts.level,
		MaxLevel: cfg.Split.MaxLevel,
		Policy:   policy,
		Filename: name,
		Refresh:  opts.refresh,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Split %d flames into %dx%d grids", res.Flames, res.Format, res.Format))

	out := opts.output
	if out == "" {
		if input == stdio {
			out = stdio
		} else {
			out = filepath.Join(filepath.Dir(input), res.Filename)
		}
	}

	if out == stdio {
		if _, err := os.Stdout.Write(res.Output); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	} else {
		if err := errors.ValidateOutputPath(out); err != nil {
			return err
		}
		if err := os.WriteFile(out, res.Output, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if !opts.noHistory {
		c.recordSplit(ctx, res, data)
	}

	// Stdout carries the scene; keep it clean.
	if out == stdio {
		return nil
	}

	printSuccess("Split %s", StyleHighlight.Render(name))
	printFile(out)
	printStats(res.Flames, res.Tiles, len(res.Skipped), res.CacheHit)
	for _, s := range res.Skipped {
		printWarning("flame %d %q kept unsplit: %s", s.Index, s.Name, s.Reason)
	}
	if res.Flames == 0 {
		printWarning("no <flame> elements found")
	}
	return nil
}

// readScene reads the scene at path, or stdin for "-", and returns it with
// the name used for the output file.
func readScene(path string) ([]byte, string, error) {
	if path == stdio {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, pipeline.DefaultFilename, nil
	}

	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s not found", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read scene: %w", err)
	}
	return data, filepath.Base(path), nil
}

// recordSplit appends res to the history. Failures only warn.
func (c *CLI) recordSplit(ctx context.Context, res *pipeline.Result, input []byte) {
	logger := loggerFromContext(ctx)

	store, err := c.newHistory(ctx)
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close(context.WithoutCancel(ctx))

	rec := history.NewRecord(res.Filename, res.Level, res.Format, res.Flames, res.Tiles, len(res.Skipped), cache.Hash(input))
	if err := store.Add(ctx, rec); err != nil {
		logger.Warn("history write failed", "error", err)
	}
}

// pickLevel shows the level picker. ok is false when the user quits
// without choosing.
func pickLevel(name string, maxLevel int) (level int, ok bool, err error) {
	m := NewLevelPickerModel(name, pipeline.Levels(maxLevel))
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return 0, false, fmt.Errorf("level picker: %w", err)
	}
	picked, _ := final.(LevelPickerModel)
	if picked.Selected == nil {
		return 0, false, nil
	}
	return picked.Selected.Level, true, nil
}
