package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
)

// A4 in millimetres. The bitmap always spans the full page width.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

// PageBand is one page-height slice of the captured preview.
type PageBand struct {
	Image    image.Image
	HeightMM float64
}

// SliceIntoPages cuts the bitmap into consecutive A4-height bands scaled to
// the page width. The last band keeps its natural, shorter height.
func SliceIntoPages(img image.Image) ([]PageBand, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("empty bitmap")
	}

	bandPx := int(math.Round(pageHeightMM * float64(w) / pageWidthMM))
	if bandPx < 1 {
		bandPx = 1
	}

	var bands []PageBand
	for y := b.Min.Y; y < b.Max.Y; y += bandPx {
		bottom := y + bandPx
		if bottom > b.Max.Y {
			bottom = b.Max.Y
		}
		rect := image.Rect(b.Min.X, y, b.Max.X, bottom)
		bands = append(bands, PageBand{
			Image:    imaging.Crop(img, rect),
			HeightMM: float64(rect.Dy()) * pageWidthMM / float64(w),
		})
	}
	return bands, nil
}

// BuildRasterPDF places each band as a full-width image on its own A4 page
// and returns the PDF bytes with the page count.
func BuildRasterPDF(img image.Image) ([]byte, int, error) {
	bands, err := SliceIntoPages(img)
	if err != nil {
		return nil, 0, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, band := range bands {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, band.Image, imaging.PNG); err != nil {
			return nil, 0, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("page-%d", i+1)
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, pageWidthMM, band.HeightMM, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, 0, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), len(bands), nil
}
