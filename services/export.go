package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync/atomic"
	"time"
)

// Export failure classes. All are wrapped in *ExportError at the engine
// boundary.
var (
	ErrAssetFetch = errors.New("image fetch failed")
	ErrRasterize  = errors.New("rasterization failed")
	ErrPack       = errors.New("document packing failed")
)

// ExportFormat is the file type produced by an export.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatDOCX ExportFormat = "docx"
	FormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// ParseExportFormat accepts pdf, docx and xlsx.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case FormatPDF, FormatDOCX, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Structured export variants for the per-group section body.
const (
	VariantTable   = "table"
	VariantBullets = "bullets"
)

// ExportState is the lifecycle of one export call.
type ExportState int

const (
	ExportIdle ExportState = iota
	ExportGenerating
	ExportSucceeded
	ExportFailed
)

func (s ExportState) String() string {
	switch s {
	case ExportGenerating:
		return "generating"
	case ExportSucceeded:
		return "succeeded"
	case ExportFailed:
		return "failed"
	}
	return "idle"
}

// ExportError is the single failure surfaced to the user for an export.
type ExportError struct {
	Format ExportFormat
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// UserMessage is the notification text shown for the failure.
func (e *ExportError) UserMessage() string {
	switch {
	case errors.Is(e.Err, ErrAssetFetch):
		return "No se pudieron cargar las imágenes de la cotización. El archivo no fue generado."
	case errors.Is(e.Err, ErrRasterize):
		return "No se pudo capturar la vista previa. El archivo no fue generado."
	default:
		return "No se pudo generar el archivo. Inténtalo nuevamente."
	}
}

// ExportResult is a finished file ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Pages       int
}

// PreviewImages are the image sources the preview markup points at.
type PreviewImages struct {
	Header    string
	Signature string
}

// PreviewFunc renders the preview markup for a view.
type PreviewFunc func(ctx context.Context, v QuoteView, img PreviewImages) (string, error)

// Rasterizer captures rendered preview markup as a bitmap at the given
// device scale.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string, scale float64) (image.Image, error)
}

// ExportEngine turns documents into downloadable files. Calls are
// independent: concurrent exports of the same quote are not coordinated.
type ExportEngine struct {
	Branding   Branding
	Assets     AssetSet
	Fetcher    AssetFetcher
	Rasterizer Rasterizer
	Preview    PreviewFunc
	Scale      float64
	Variant    string
	Now        func() time.Time

	// OnState, when set, observes every state transition of every call.
	OnState func(format ExportFormat, s ExportState)

	inFlight atomic.Int32
}

// InProgress reports whether any export is currently generating.
func (e *ExportEngine) InProgress() bool {
	return e.inFlight.Load() > 0
}

func (e *ExportEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *ExportEngine) transition(f ExportFormat, s ExportState) {
	if e.OnState != nil {
		e.OnState(f, s)
	}
}

// Export validates the document and produces the file. Validation errors are
// returned as-is before any work starts; every later failure is an
// *ExportError and no partial output is returned with it.
func (e *ExportEngine) Export(ctx context.Context, format ExportFormat, doc QuoteDocument) (*ExportResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	e.transition(format, ExportGenerating)

	result, err := e.generate(ctx, format, doc)
	if err != nil {
		e.transition(format, ExportFailed)
		e.transition(format, ExportIdle)
		log.Printf("export_%s: %q failed: %v", format, doc.ClientName, err)
		return nil, &ExportError{Format: format, Err: err}
	}

	e.transition(format, ExportSucceeded)
	e.transition(format, ExportIdle)
	return result, nil
}

func (e *ExportEngine) generate(ctx context.Context, format ExportFormat, doc QuoteDocument) (*ExportResult, error) {
	view := BuildQuoteView(doc, e.Branding, e.now())
	result := &ExportResult{
		Filename:    ExportFilename(doc.ClientName, string(format)),
		ContentType: format.ContentType(),
	}

	switch format {
	case FormatPDF:
		data, pages, err := e.rasterizedPDF(ctx, view)
		if err != nil {
			return nil, err
		}
		result.Data, result.Pages = data, pages
	case FormatDOCX:
		assets, err := FetchExportAssets(ctx, e.Fetcher, e.Assets)
		if err != nil {
			return nil, err
		}
		variant := e.Variant
		if variant == "" {
			variant = VariantTable
		}
		data, err := BuildWordDocument(view, assets, variant)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPack, err)
		}
		result.Data = data
	case FormatXLSX:
		data, err := GenerateQuoteSheet(view)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPack, err)
		}
		result.Data = data
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return result, nil
}

func (e *ExportEngine) rasterizedPDF(ctx context.Context, view QuoteView) ([]byte, int, error) {
	if e.Rasterizer == nil || e.Preview == nil {
		return nil, 0, fmt.Errorf("%w: no rasterizer configured", ErrRasterize)
	}
	assets, err := FetchExportAssets(ctx, e.Fetcher, e.Assets)
	if err != nil {
		return nil, 0, err
	}
	html, err := e.Preview(ctx, view, PreviewImages{
		Header:    assets.Header.DataURI(),
		Signature: assets.Signature.DataURI(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: render preview: %v", ErrRasterize, err)
	}

	scale := e.Scale
	if scale < 2 {
		scale = 2
	}
	bitmap, err := e.Rasterizer.Rasterize(ctx, html, scale)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRasterize, err)
	}

	data, pages, err := BuildRasterPDF(bitmap)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPack, err)
	}
	return data, pages, nil
}
