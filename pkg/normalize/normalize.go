// Package normalize converts arbitrary uploaded files into canonical
// embedded-payload records: images are recompressed, PDFs are rendered to
// per-page JPEGs when a rasterizer is available, and everything else passes
// through unchanged.
package normalize

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
)

const (
	// maxImageWidth caps recompressed image width; aspect ratio is preserved.
	maxImageWidth = 1200
	// jpegQuality is the fixed re-encode quality for images and PDF pages.
	jpegQuality = 70
	// pdfPageScale is the fixed upscaling factor applied to rasterized pages.
	pdfPageScale = 1.5
)

// Normalizer applies the per-type normalization policy. The rasterizer is an
// injected capability; nil means PDF handling degrades to raw passthrough.
type Normalizer struct {
	raster Rasterizer
}

func New(r Rasterizer) *Normalizer {
	return &Normalizer{raster: r}
}

// Normalize produces an ordered, non-empty list of file records for one
// upload. It either completes or returns an error; it never returns a
// partial list and never mutates data.
func (n *Normalizer) Normalize(name, mimeType string, data []byte) ([]models.UploadedFile, error) {
	switch {
	case mimeType == "application/pdf":
		return n.normalizePDF(name, mimeType, data), nil
	case strings.HasPrefix(mimeType, "image/"):
		f, err := recompressImage(name, data)
		if err != nil {
			return nil, err
		}
		return []models.UploadedFile{f}, nil
	default:
		return []models.UploadedFile{passthrough(name, mimeType, data)}, nil
	}
}

// normalizePDF renders each page to a JPEG record. Rasterization failure is
// recoverable: the whole file falls back to a single raw record so callers
// never see a partial page list.
func (n *Normalizer) normalizePDF(name, mimeType string, data []byte) []models.UploadedFile {
	if n.raster == nil || !n.raster.Ready() {
		return []models.UploadedFile{passthrough(name, mimeType, data)}
	}
	pages, err := n.raster.RenderPages(data, pdfPageScale)
	if err != nil || len(pages) == 0 {
		log.Printf("WARN pdf rasterization failed for %s, keeping raw file: %v", name, err)
		return []models.UploadedFile{passthrough(name, mimeType, data)}
	}
	out := make([]models.UploadedFile, 0, len(pages))
	for i, page := range pages {
		b, err := encodeJPEG(page)
		if err != nil {
			log.Printf("WARN pdf page encode failed for %s page %d, keeping raw file: %v", name, i+1, err)
			return []models.UploadedFile{passthrough(name, mimeType, data)}
		}
		out = append(out, models.UploadedFile{
			Name:     fmt.Sprintf("%s - Page %d", name, i+1),
			MimeType: "image/jpeg",
			Data:     dataURI("image/jpeg", b),
		})
	}
	return out
}

func passthrough(name, mimeType string, data []byte) models.UploadedFile {
	return models.UploadedFile{Name: name, MimeType: mimeType, Data: dataURI(mimeType, data)}
}

// dataURI wraps raw bytes as a self-describing base64 payload.
func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
