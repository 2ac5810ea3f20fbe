// Command topola-viewer renders a family-tree chart from a pre-parsed
// JSON dataset and exports it to SVG, PNG, PDF or the browser print
// flow.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ipalcic/topola-viewer-2025/chart"
	"github.com/ipalcic/topola-viewer-2025/config"
	"github.com/ipalcic/topola-viewer-2025/export"
	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
	"github.com/ipalcic/topola-viewer-2025/viewer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type renderFlags struct {
	configPath string
	dataPath   string
	start      string
	chartType  string
	renderer   string
	colors     string
	out        string
	print      bool
	showIDs    bool
	showSex    bool
	width      float64
	height     float64
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "topola-viewer",
		Short:         "Family-tree chart renderer and exporter",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRenderCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a chart and export it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.configPath, "config", "viewer.yml", "viewer configuration file")
	cmd.Flags().StringVar(&flags.dataPath, "data", "", "JSON dataset produced by a GEDCOM parser")
	cmd.Flags().StringVar(&flags.start, "start", "", "id of the individual to start from")
	cmd.Flags().StringVar(&flags.chartType, "type", string(chart.Hourglass), "chart type: hourglass, ancestors, descendants, fan")
	cmd.Flags().StringVar(&flags.renderer, "renderer", string(chart.RendererSimple), "box renderer: simple, detailed")
	cmd.Flags().StringVar(&flags.colors, "colors", string(chart.ColorsNone), "color scheme: none, generation, sex")
	cmd.Flags().StringVar(&flags.out, "out", "", "output file, format chosen by extension (.svg, .png, .pdf)")
	cmd.Flags().BoolVar(&flags.print, "print", false, "open the chart in the browser print flow instead of saving")
	cmd.Flags().BoolVar(&flags.showIDs, "show-ids", false, "render individual ids")
	cmd.Flags().BoolVar(&flags.showSex, "show-sex", false, "render sex markers")
	cmd.Flags().Float64Var(&flags.width, "width", 1280, "viewport width in pixels")
	cmd.Flags().Float64Var(&flags.height, "height", 800, "viewport height in pixels")
	cobra.CheckErr(cmd.MarkFlagRequired("data"))
	cobra.CheckErr(cmd.MarkFlagRequired("start"))
	return cmd
}

func runRender(ctx context.Context, flags renderFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	data, err := loadDataset(flags.dataPath)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"individuals": len(data.Indis),
		"families":    len(data.Fams),
	}).Info("dataset loaded")

	mount := svgdom.New("div")
	coord := viewer.NewCoordinator(cfg, mount, viewer.NewViewport(flags.width, flags.height), nil, log)
	err = coord.RenderChart(viewer.RenderRequest{
		Data:            data,
		StartIndividual: flags.start,
		ChartType:       chart.Type(flags.chartType),
		Renderer:        chart.RendererType(flags.renderer),
		Colors:          chart.ColorScheme(flags.colors),
		ShowIDs:         flags.showIDs,
		ShowSex:         flags.showSex,
	}, viewer.RenderOptions{Initial: true, ResetViewport: true})
	if err != nil {
		return err
	}

	exporter := export.New(coord, log, export.WithRasterScale(cfg.ExportScale))
	if flags.print {
		return exporter.PrintChart(ctx)
	}
	if flags.out == "" {
		return fmt.Errorf("either --out or --print is required")
	}
	return saveTo(ctx, exporter, flags.out)
}

func saveTo(ctx context.Context, exporter *export.Exporter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		err = exporter.DownloadSVG(ctx, f)
	case ".png":
		err = exporter.DownloadPNG(ctx, f)
	case ".pdf":
		err = exporter.DownloadPDF(ctx, f)
	default:
		err = fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func loadDataset(path string) (*gedcom.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var data gedcom.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return &data, nil
}

func newLogger(level string) *logrus.Entry {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logrus.NewEntry(logger)
}
