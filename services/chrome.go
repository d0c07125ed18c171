package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/disintegration/imaging"
)

// PreviewSelector is the element captured by the rasterizer.
const PreviewSelector = "#quote-preview"

// previewWidthPx is A4 width at 96 dpi; the preview is laid out for it.
const previewWidthPx = 794

const imagesLoadedJS = `Array.from(document.images).every(function (img) { return img.complete; })`

// ChromeRasterizer captures preview markup with headless Chrome.
type ChromeRasterizer struct {
	ExecPath string
	Timeout  time.Duration
}

// detectChromePath finds a Chrome or Chromium binary. An empty result lets
// chromedp fall back to its own lookup.
func detectChromePath(configured string) string {
	if configured != "" {
		return configured
	}
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, p := range []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Rasterize loads the markup into a blank page and screenshots the preview
// element at the given scale.
func (r ChromeRasterizer) Rasterize(ctx context.Context, html string, scale float64) (image.Image, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if p := detectChromePath(r.ExecPath); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, r.Timeout)
		defer cancel()
	}

	var loaded bool
	var buf []byte
	err := chromedp.Run(taskCtx,
		chromedp.EmulateViewport(previewWidthPx, 1123),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible(PreviewSelector, chromedp.ByQuery),
		chromedp.Poll(imagesLoadedJS, &loaded),
		chromedp.ScreenshotScale(PreviewSelector, scale, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("capture preview: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}
