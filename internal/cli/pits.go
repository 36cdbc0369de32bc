package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hurstaa/landlab/pkg/cache"
	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/io"
)

func (c *CLI) pitsCommand() *cobra.Command {
	var (
		field   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "pits [file]",
		Short: "List the depressions of an elevation grid",
		Long: `Detect pits and map the lake each one would hold, without filling.

Each row shows the lake code (the pit it grew from), its outlet node, spill
elevation, member count and the water volume it holds at spill level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPits(cmd.Context(), args[0], field, noCache)
		},
	}

	cmd.Flags().StringVar(&field, "elevation-field", "", "name of the elevation field")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runPits(ctx context.Context, path, field string, noCache bool) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if field == "" {
		field = cfg.ElevationField
	}
	in, err := loadInput(path, field)
	if err != nil {
		return err
	}

	store := c.newCache(cfg, noCache)
	defer store.Close()
	key := keyer().PitsKey(in.hash, in.field)

	var res cache.PitsResult
	cached, err := cache.Load(ctx, store, cache.KeyTypePits, key, &res)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if !cached {
		if res.Pits, res.Lakes, err = mapDepressions(in, logger); err != nil {
			return err
		}
		if err := cache.Store(ctx, store, cache.KeyTypePits, key, res, cfg.Cache.TTL); err != nil {
			logger.Warn("cache write failed", "err", err)
		}
	}

	if len(res.Lakes) == 0 {
		printInfo("No depressions in %s", path)
		return nil
	}
	printSuccess("Found %d pits in %d lakes", len(res.Pits), len(res.Lakes))
	fmt.Println(lakeTable(res.Lakes))
	printStats(in.grid.NodeCount(), len(res.Lakes), cached)
	return nil
}

// lakeTable renders lakes as a bordered table.
func lakeTable(lakes []io.LakeReport) string {
	rows := make([][]string, 0, len(lakes))
	for _, lk := range lakes {
		outlet := "none"
		if lk.Outlet != grid.BadIndex {
			outlet = strconv.Itoa(lk.Outlet)
		}
		rows = append(rows, []string{
			strconv.Itoa(lk.Code),
			outlet,
			formatNumber(lk.Spill),
			strconv.Itoa(lk.Nodes),
			formatNumber(lk.Volume),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Lake", "Outlet", "Spill", "Nodes", "Volume").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col == 1 && rows[row][1] == "none" {
				return cellStyle.Foreground(colorYellow)
			}
			return cellStyle
		})
	return t.Render()
}
