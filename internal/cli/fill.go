package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hurstaa/landlab/pkg/cache"
	"github.com/hurstaa/landlab/pkg/config"
	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/io"
	"github.com/hurstaa/landlab/pkg/sinkfill"
)

// fillOpts holds the command-line flags for the fill command.
type fillOpts struct {
	slope   string // "false", "true" or a gradient; empty defers to config
	field   string // elevation field name; empty defers to config
	output  string // filled elevation raster
	depth   string // fill depth raster
	report  string // JSON fill report
	noCache bool
}

func (c *CLI) fillCommand() *cobra.Command {
	var opts fillOpts

	cmd := &cobra.Command{
		Use:   "fill [file]",
		Short: "Fill depressions in an elevation grid",
		Long: `Fill every closed depression of an ESRI ASCII (.asc) or TOML (.toml) grid.

With --slope false (the default) lakes are filled flat to their spill elevation.
With --slope true, or a numeric gradient, lake surfaces are tilted toward their
outlet so that the filled surface keeps draining in the original direction.`,
		Example: `  sinkfill fill dem.asc --output filled.asc
  sinkfill fill dem.asc --slope true --depth depth.asc --report fill.json
  sinkfill fill basin.toml --slope 2e-6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFill(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.slope, "slope", "", "lake surface gradient: false, true (1e-5) or a number")
	cmd.Flags().StringVar(&opts.field, "elevation-field", "", "name of the elevation field")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the filled surface as ESRI ASCII")
	cmd.Flags().StringVar(&opts.depth, "depth", "", "write the fill depth as ESRI ASCII")
	cmd.Flags().StringVar(&opts.report, "report", "", "write a JSON fill report")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runFill(ctx context.Context, path string, opts fillOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.slope != "" {
		if err := cfg.Set(config.KeySlope, opts.slope); err != nil {
			return err
		}
	}
	slope, err := sinkfill.ParseSlope(cfg.Slope)
	if err != nil {
		return err
	}

	field := cfg.ElevationField
	if opts.field != "" {
		field = opts.field
	}
	in, err := loadInput(path, field)
	if err != nil {
		return err
	}
	if err := cfg.Set(config.KeyElevationField, in.field); err != nil {
		return err
	}

	store := c.newCache(cfg, opts.noCache)
	defer store.Close()
	key := keyer().FillKey(in.hash, cache.FillKeyOpts{Field: in.field, Slope: float64(slope)})

	prog := newProgress(logger)
	var res cache.FillResult
	cached, err := cache.Load(ctx, store, cache.KeyTypeFill, key, &res)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if cached && len(res.Elevation) == in.grid.NodeCount() && len(res.Depth) == in.grid.NodeCount() {
		if err := applyResult(in, res); err != nil {
			return err
		}
	} else {
		cached = false
		if res, err = fillSurface(in, cfg.Params(), slope, logger); err != nil {
			return err
		}
		if err := cache.Store(ctx, store, cache.KeyTypeFill, key, res, cfg.Cache.TTL); err != nil {
			logger.Warn("cache write failed", "err", err)
		}
	}

	depth, err := in.grid.Floats(sinkfill.FieldFillDepth)
	if err != nil {
		return err
	}
	rep := io.NewReport(in.grid, in.field, float64(slope), depth, res.Lakes)
	prog.done(fmt.Sprintf("Filled %d nodes", rep.Filled))

	printSuccess("Filled %s", StyleTitle.Render(path))
	printKeyValue("Slope", slope.String())
	printKeyValue("Lakes", fmt.Sprint(len(rep.Lakes)))
	printKeyValue("Filled", fmt.Sprintf("%d of %d nodes", rep.Filled, rep.Nodes))
	printKeyValue("Max depth", formatNumber(rep.MaxDepth))
	printKeyValue("Volume", formatNumber(rep.Volume))
	printStats(rep.Nodes, len(rep.Lakes), cached)
	for _, lk := range rep.Lakes {
		if lk.Outlet == grid.BadIndex {
			printWarning("Lake %d has no outlet and was left unfilled", lk.Code)
		}
	}

	return writeOutputs(in, rep, opts)
}

// fillSurface runs the filler over the input grid.
func fillSurface(in *input, params sinkfill.Params, slope sinkfill.Slope, logger *log.Logger) (cache.FillResult, error) {
	_, lakes, err := mapDepressions(in, logger)
	if err != nil {
		return cache.FillResult{}, err
	}

	f, err := sinkfill.New(in.grid, sinkfill.WithParams(params), sinkfill.WithLogger(logger))
	if err != nil {
		return cache.FillResult{}, err
	}
	if err := f.FillPits(slope); err != nil {
		return cache.FillResult{}, err
	}

	z, err := in.grid.Floats(f.ElevationField())
	if err != nil {
		return cache.FillResult{}, err
	}
	depth, err := in.grid.Floats(sinkfill.FieldFillDepth)
	if err != nil {
		return cache.FillResult{}, err
	}
	return cache.FillResult{
		Field:     in.field,
		Slope:     float64(slope),
		Elevation: slices.Clone(z),
		Depth:     slices.Clone(depth),
		Lakes:     lakes,
	}, nil
}

// applyResult writes a cached fill into the input grid.
func applyResult(in *input, res cache.FillResult) error {
	z, err := in.grid.Floats(in.field)
	if err != nil {
		return err
	}
	depth, err := in.grid.EnsureFloats(sinkfill.FieldFillDepth)
	if err != nil {
		return err
	}
	copy(z, res.Elevation)
	copy(depth, res.Depth)
	return nil
}

func writeOutputs(in *input, rep io.Report, opts fillOpts) error {
	if opts.output != "" {
		if err := io.ExportASCII(in.grid, in.field, opts.output, io.DefaultNoData); err != nil {
			return err
		}
		printFile(opts.output)
	}
	if opts.depth != "" {
		if err := io.ExportASCII(in.grid, sinkfill.FieldFillDepth, opts.depth, io.DefaultNoData); err != nil {
			return err
		}
		printFile(opts.depth)
	}
	if opts.report != "" {
		if err := io.ExportJSON(rep, opts.report); err != nil {
			return err
		}
		printFile(opts.report)
	}
	return nil
}
