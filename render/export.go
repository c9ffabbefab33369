package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ============================================================================
// STATIC EXPORT — PNG / PDF / SVG via a headless browser
// ============================================================================
// The figure HTML is written to a temp file, opened in a headless Chrome
// instance, and captured once the chart has painted. The browser process and
// the temp directory are torn down whether or not the capture succeeds.
// ============================================================================

// chromeCandidates are the browser binaries probed on PATH, in order.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

const exportTimeout = 60 * time.Second

// findChrome locates a usable browser binary.
func findChrome() (string, bool) {
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// waitPainted blocks until the echarts canvas (or svg) is in the DOM.
func waitPainted(ctx context.Context) error {
	var ready bool
	return chromedp.Run(ctx, chromedp.Poll(
		`document.querySelector("canvas, div[_echarts_instance_] svg") !== null`,
		&ready,
		chromedp.WithPollingInterval(100*time.Millisecond),
	))
}

func (r *ECharts) exportStatic(fig *echartsFigure, path string, format Format) (err error) {
	const op = "export"

	chrome, ok := findChrome()
	if !ok {
		return &EngineUnavailableError{Format: format}
	}

	dir, err := os.MkdirTemp("", "vizier-export-")
	if err != nil {
		return renderErrf(op, "%v", err)
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "figure.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return renderErrf(op, "%v", err)
	}
	if err := fig.chart.Render(f); err != nil {
		f.Close()
		return renderErrf(op, "%v", err)
	}
	if err := f.Close(); err != nil {
		return renderErrf(op, "%v", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chrome),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	ctx, cancel := context.WithTimeout(browserCtx, exportTimeout)
	defer cancel()

	url := "file://" + htmlPath
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return renderErrf(op, "loading figure: %v", err)
	}
	if err := waitPainted(ctx); err != nil {
		return renderErrf(op, "waiting for chart to paint: %v", err)
	}

	var out []byte
	switch format {
	case FormatPNG:
		out, err = capturePNG(ctx)
	case FormatPDF:
		out, err = capturePDF(ctx)
	case FormatSVG:
		out, err = captureSVG(ctx, fig.id)
	default:
		return renderErrf(op, "unsupported static format %q", format)
	}
	if err != nil {
		return renderErrf(op, "capturing %s: %v", format, err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return renderErrf(op, "%v", err)
	}
	return nil
}

// capturePNG reads the chart canvas back as a PNG data URL. Pulling the
// canvas directly keeps the output tight to the chart instead of the
// whole viewport.
func capturePNG(ctx context.Context) ([]byte, error) {
	var dataURL string
	err := chromedp.Run(ctx, chromedp.Evaluate(
		`document.querySelector("canvas").toDataURL("image/png")`,
		&dataURL,
	))
	if err != nil {
		return nil, err
	}
	const prefix = "data:image/png;base64,"
	if len(dataURL) <= len(prefix) {
		return nil, fmt.Errorf("canvas produced no image data")
	}
	return base64.StdEncoding.DecodeString(dataURL[len(prefix):])
}

func capturePDF(ctx context.Context) ([]byte, error) {
	var out []byte
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithLandscape(true).
			Do(ctx)
		if err != nil {
			return err
		}
		out = buf
		return nil
	}))
	return out, err
}

// captureSVG reinitializes the chart with the SVG renderer and lifts the
// resulting element out of the DOM. echarts only emits SVG when asked to at
// init time, so the canvas-rendered instance is disposed first.
func captureSVG(ctx context.Context, chartID string) ([]byte, error) {
	script := fmt.Sprintf(`(function() {
		var el = document.getElementById(%q);
		var inst = echarts.getInstanceByDom(el);
		var option = inst.getOption();
		inst.dispose();
		var svgInst = echarts.init(el, null, {renderer: "svg"});
		svgInst.setOption(option);
		var svg = el.querySelector("svg");
		return svg ? svg.outerHTML : "";
	})()`, chartID)

	var svg string
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &svg)); err != nil {
		return nil, err
	}
	if svg == "" {
		return nil, fmt.Errorf("svg renderer produced no output")
	}
	return []byte(svg), nil
}
