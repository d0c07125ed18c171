package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type fakeFetcher struct {
	files map[string][]byte
	fail  map[string]bool
}

func (f fakeFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	if f.fail[ref] {
		return nil, errors.New("connection refused")
	}
	data, ok := f.files[ref]
	if !ok {
		return nil, fmt.Errorf("%s: not found", ref)
	}
	return data, nil
}

type fakeRasterizer struct {
	mu    sync.Mutex
	html  string
	scale float64
	err   error
}

func (r *fakeRasterizer) Rasterize(_ context.Context, html string, scale float64) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.html, r.scale = html, scale
	if r.err != nil {
		return nil, r.err
	}
	return imaging.New(794, 1500, color.White), nil
}

type stateLog struct {
	mu     sync.Mutex
	states []ExportState
}

func (l *stateLog) record(_ ExportFormat, s ExportState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

func (l *stateLog) String() string {
	parts := make([]string, len(l.states))
	for i, s := range l.states {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func newTestEngine(t *testing.T, fetcher fakeFetcher, raster *fakeRasterizer, log *stateLog) *ExportEngine {
	t.Helper()
	return &ExportEngine{
		Branding:   testBranding,
		Assets:     AssetSet{Header: "header.png", Footer: "footer.png", Signature: "signature.png"},
		Fetcher:    fetcher,
		Rasterizer: raster,
		Preview: func(_ context.Context, v QuoteView, img PreviewImages) (string, error) {
			return `<div id="quote-preview"><img src="` + img.Header + `">` + v.ClientName + `</div>`, nil
		},
		Scale:   1,
		OnState: log.record,
	}
}

func allAssets(t *testing.T) fakeFetcher {
	return fakeFetcher{files: map[string][]byte{
		"header.png":    pngBytes(t, 600, 100),
		"footer.png":    pngBytes(t, 600, 100),
		"signature.png": pngBytes(t, 150, 60),
	}}
}

func TestExport_PDF(t *testing.T) {
	var log stateLog
	raster := &fakeRasterizer{}
	engine := newTestEngine(t, allAssets(t), raster, &log)

	res, err := engine.Export(context.Background(), FormatPDF, validDocument())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Filename != "quote-acme-s.a..pdf" {
		t.Errorf("Filename = %q", res.Filename)
	}
	if res.ContentType != "application/pdf" || !bytes.HasPrefix(res.Data, []byte("%PDF-")) {
		t.Errorf("unexpected PDF result: %s", res.ContentType)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
	if raster.scale < 2 {
		t.Errorf("rasterized at scale %v, want at least 2", raster.scale)
	}
	if !strings.Contains(raster.html, "data:image/png;base64,") {
		t.Error("preview images must be inlined before capture")
	}
	if got := log.String(); got != "generating,succeeded,idle" {
		t.Errorf("states = %s", got)
	}
	if engine.InProgress() {
		t.Error("engine still reports an export in progress")
	}
}

func TestExport_ImageFetchFailure(t *testing.T) {
	for _, format := range []ExportFormat{FormatPDF, FormatDOCX} {
		t.Run(string(format), func(t *testing.T) {
			var log stateLog
			fetcher := allAssets(t)
			fetcher.fail = map[string]bool{"signature.png": true}
			engine := newTestEngine(t, fetcher, &fakeRasterizer{}, &log)

			res, err := engine.Export(context.Background(), format, validDocument())
			if res != nil {
				t.Error("no file may be delivered when an image fails")
			}
			var exportErr *ExportError
			if !errors.As(err, &exportErr) {
				t.Fatalf("expected *ExportError, got %v", err)
			}
			if !errors.Is(err, ErrAssetFetch) {
				t.Errorf("expected ErrAssetFetch, got %v", err)
			}
			if !strings.Contains(exportErr.UserMessage(), "imágenes") {
				t.Errorf("UserMessage = %q", exportErr.UserMessage())
			}
			if got := log.String(); got != "generating,failed,idle" {
				t.Errorf("states = %s", got)
			}
		})
	}
}

func TestExport_NonImageAsset(t *testing.T) {
	var log stateLog
	fetcher := allAssets(t)
	fetcher.files["footer.png"] = []byte("<html>not found</html>")
	engine := newTestEngine(t, fetcher, &fakeRasterizer{}, &log)

	_, err := engine.Export(context.Background(), FormatDOCX, validDocument())
	if !errors.Is(err, ErrAssetFetch) {
		t.Errorf("expected ErrAssetFetch for a non-image payload, got %v", err)
	}
}

func TestExport_RasterizeFailure(t *testing.T) {
	var log stateLog
	engine := newTestEngine(t, allAssets(t), &fakeRasterizer{err: errors.New("chrome crashed")}, &log)

	_, err := engine.Export(context.Background(), FormatPDF, validDocument())
	if !errors.Is(err, ErrRasterize) {
		t.Fatalf("expected ErrRasterize, got %v", err)
	}
	if got := log.String(); got != "generating,failed,idle" {
		t.Errorf("states = %s", got)
	}
}

func TestExport_ValidationFailsBeforeGenerating(t *testing.T) {
	var log stateLog
	engine := newTestEngine(t, allAssets(t), &fakeRasterizer{}, &log)

	doc := validDocument()
	doc.Items = nil
	_, err := engine.Export(context.Background(), FormatPDF, doc)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		t.Error("validation errors must not be wrapped as export failures")
	}
	if len(log.states) != 0 {
		t.Errorf("no state transitions expected, got %s", log.String())
	}
}

func TestExport_DOCX(t *testing.T) {
	var log stateLog
	engine := newTestEngine(t, allAssets(t), &fakeRasterizer{}, &log)

	doc := validDocument()
	doc.ConsiderationsText = "Montaje incluido"
	res, err := engine.Export(context.Background(), FormatDOCX, doc)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Filename != "quote-acme-s.a..docx" {
		t.Errorf("Filename = %q", res.Filename)
	}

	body := readZipPart(t, res.Data, "word/document.xml")
	for _, want := range []string{"Acme S.A.", "Montaje incluido", "Sin servicio - $90.000", "TOTAL", "$107.100"} {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
}

func TestExport_XLSX(t *testing.T) {
	var log stateLog
	engine := newTestEngine(t, allAssets(t), &fakeRasterizer{}, &log)

	res, err := engine.Export(context.Background(), FormatXLSX, validDocument())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.ContentType != FormatXLSX.ContentType() {
		t.Errorf("ContentType = %q", res.ContentType)
	}
}

func TestExport_ConcurrentCallsIndependent(t *testing.T) {
	var log stateLog
	engine := newTestEngine(t, allAssets(t), &fakeRasterizer{}, &log)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Export(context.Background(), FormatDOCX, validDocument())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent export failed: %v", err)
		}
	}
	if engine.InProgress() {
		t.Error("in-flight counter did not return to zero")
	}
}

func TestParseExportFormat(t *testing.T) {
	for _, s := range []string{"pdf", "docx", "xlsx"} {
		if _, err := ParseExportFormat(s); err != nil {
			t.Errorf("ParseExportFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseExportFormat("odt"); err == nil {
		t.Error("expected error for odt")
	}
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b)
	}
	t.Fatalf("%s not found in package", name)
	return ""
}
