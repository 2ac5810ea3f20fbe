package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/ipalcic/topola-viewer-2025/raster"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

// DownloadPNG rasterizes the chart at the configured oversampling
// scale onto an opaque white canvas and writes it PNG-encoded.
func (e *Exporter) DownloadPNG(ctx context.Context, w io.Writer) error {
	img, _, err := e.rasterize(ctx)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// DownloadPDF embeds the rasterized chart into a single-page PDF sized
// to the chart's natural dimensions.
func (e *Exporter) DownloadPDF(ctx context.Context, w io.Writer) error {
	img, size, err := e.rasterize(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode pdf raster: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: size.w, Ht: size.h},
	})
	pdf.AddPage()
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opt, &buf)
	pdf.ImageOptions("chart", 0, 0, size.w, size.h, false, opt, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type natSize struct {
	w, h float64
}

// rasterize runs the shared snapshot front half and decodes the
// serialized document into a bitmap.
func (e *Exporter) rasterize(ctx context.Context) (img *image.RGBA, size natSize, err error) {
	snap, err := e.SnapshotNormalizedSVG()
	if err != nil {
		return nil, natSize{}, err
	}
	e.InlineAllImages(ctx, snap)

	size.w = attrFloat(snap, "width")
	size.h = attrFloat(snap, "height")

	img, err = raster.Render(strings.NewReader(e.Serialize(snap)), e.rasterScale)
	if err != nil {
		return nil, natSize{}, fmt.Errorf("rasterize chart: %w", err)
	}
	return img, size, nil
}

func attrFloat(el *svgdom.Element, name string) float64 {
	f, _ := strconv.ParseFloat(el.AttrOr(name, "0"), 64)
	return f
}
