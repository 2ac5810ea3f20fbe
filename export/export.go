// Implements the export pipeline: it snapshots the live chart SVG,
// normalizes it to 1:1 scale, inlines remote images and serializes or
// rasterizes the result to SVG, PNG, PDF or a browser print flow.
package export

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"

	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

// MIME types of the downloadable artifacts.
const (
	MimeSVG = "image/svg+xml"
	MimePNG = "image/png"
	MimePDF = "application/pdf"
)

const svgNamespace = "http://www.w3.org/2000/svg"
const xlinkNamespace = "http://www.w3.org/1999/xlink"

// Source is the live chart surface the exporter reads, kept up to date
// by the render coordinator.
type Source interface {
	// Mount returns the element the chart svg lives under.
	Mount() *svgdom.Element
	// Scale returns the current zoom scale.
	Scale() float64
}

// Exporter produces self-contained artifacts from a chart source.
type Exporter struct {
	source Source
	client *http.Client
	log    *logrus.Entry

	// rasterScale oversamples PNG/PDF output.
	rasterScale float64

	// openBrowser is swapped out in tests.
	openBrowser func(path string) error
	// printSettle is how long the print shell stays on disk after it
	// was handed to the browser.
	printSettle time.Duration
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithHTTPClient overrides the client used to fetch remote images.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Exporter) { e.client = c }
}

// WithRasterScale overrides the PNG/PDF oversampling factor.
func WithRasterScale(s float64) Option {
	return func(e *Exporter) { e.rasterScale = s }
}

// New returns an exporter reading from the given source.
func New(source Source, log *logrus.Entry, opts ...Option) *Exporter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	e := &Exporter{
		source:      source,
		client:      http.DefaultClient,
		log:         log.WithField("component", "export"),
		rasterScale: 2,
		openBrowser: browser.OpenFile,
		printSettle: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SnapshotNormalizedSVG clones the live chart svg and strips its
// transient viewport state: the pan transform goes, width/height are
// divided back to natural size and the inner scale transform goes.
func (e *Exporter) SnapshotNormalizedSVG() (*svgdom.Element, error) {
	svg := e.source.Mount().Find("svg")
	if svg == nil {
		return nil, fmt.Errorf("export: no rendered chart to snapshot")
	}
	snap := svg.Clone()
	snap.RemoveAttr("transform")

	scale := e.source.Scale()
	for _, dim := range []string{"width", "height"} {
		v, err := strconv.ParseFloat(snap.AttrOr(dim, ""), 64)
		if err != nil {
			return nil, fmt.Errorf("export: chart svg has no usable %s", dim)
		}
		snap.SetAttr(dim, strconv.FormatFloat(v/scale, 'f', -1, 64))
	}
	if g := snap.Find("g"); g != nil {
		g.RemoveAttr("transform")
	}

	// standalone documents need their namespaces declared
	snap.SetAttr("xmlns", svgNamespace)
	if len(snap.FindAll("image")) > 0 {
		snap.SetAttr("xmlns:xlink", xlinkNamespace)
	}
	return snap, nil
}

// InlineAllImages rewrites every remote image reference in the snapshot
// as a data URI. All fetches run concurrently; a failed fetch is logged
// and leaves that one reference unmodified.
func (e *Exporter) InlineAllImages(ctx context.Context, el *svgdom.Element) {
	var wg sync.WaitGroup
	for _, img := range el.FindAll("image") {
		attr := "href"
		href, ok := img.Attr(attr)
		if !ok {
			attr = "xlink:href"
			href, ok = img.Attr(attr)
		}
		if !ok || href == "" || strings.HasPrefix(href, "data:") {
			continue
		}
		wg.Add(1)
		go func(img *svgdom.Element, attr, href string) {
			defer wg.Done()
			uri, err := e.fetchDataURI(ctx, href)
			if err != nil {
				e.log.WithError(err).WithField("href", href).Warn("image could not be inlined")
				return
			}
			img.SetAttr(attr, uri)
		}(img, attr, href)
	}
	wg.Wait()
}

func (e *Exporter) fetchDataURI(ctx context.Context, href string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %s", href, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", href, err)
	}
	ctype := resp.Header.Get("Content-Type")
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	return "data:" + ctype + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Serialize XML-serializes a snapshot.
func (e *Exporter) Serialize(el *svgdom.Element) string {
	return el.String()
}

// snapshotString is the shared snapshot+inline+serialize front half of
// every export target.
func (e *Exporter) snapshotString(ctx context.Context) (string, error) {
	snap, err := e.SnapshotNormalizedSVG()
	if err != nil {
		return "", err
	}
	e.InlineAllImages(ctx, snap)
	return e.Serialize(snap), nil
}

// DownloadSVG writes the chart as a standalone SVG document.
func (e *Exporter) DownloadSVG(ctx context.Context, w io.Writer) error {
	s, err := e.snapshotString(ctx)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header+s); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// PrintChart serializes the chart with inlined images, writes it into
// a print shell page and hands that to the native browser print flow.
// The shell file is removed afterwards.
func (e *Exporter) PrintChart(ctx context.Context) error {
	s, err := e.snapshotString(ctx)
	if err != nil {
		return err
	}
	shell := "<!DOCTYPE html><html><head><title>Print chart</title></head>" +
		`<body onload="window.print()">` + s + "</body></html>"

	path := filepath.Join(os.TempDir(), fmt.Sprintf("topola-print-%d.html", time.Now().UnixNano()))
	if err := os.WriteFile(path, []byte(shell), 0o600); err != nil {
		return fmt.Errorf("write print shell: %w", err)
	}
	if err := e.openBrowser(path); err != nil {
		os.Remove(path)
		return fmt.Errorf("open print shell: %w", err)
	}
	// leave the shell around long enough for the browser to load it
	time.AfterFunc(e.printSettle, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.log.WithError(err).Debug("print shell cleanup failed")
		}
	})
	return nil
}
