package normalize

import (
	"bytes"
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFRasterizer renders scanned PDFs by pulling each page's largest embedded
// image out with pdfcpu. Vector-only pages yield an error, which the
// Normalizer treats as a fallback signal rather than a failure.
type PDFRasterizer struct {
	conf *model.Configuration
}

func NewPDFRasterizer() *PDFRasterizer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFRasterizer{conf: conf}
}

func (r *PDFRasterizer) Ready() bool {
	return r != nil && r.conf != nil
}

// RenderPages returns one image per page, in page order. Any page without a
// decodable embedded image fails the whole document.
func (r *PDFRasterizer) RenderPages(data []byte, scale float64) ([]image.Image, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), r.conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("ensure page count: %w", err)
	}
	pages := make([]image.Image, 0, ctx.PageCount)
	for p := 1; p <= ctx.PageCount; p++ {
		imgs, err := pdfcpu.ExtractPageImages(ctx, p, false)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", p, err)
		}
		page, err := largestPageImage(imgs)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p, err)
		}
		if scale != 1 {
			page = imaging.Resize(page, int(float64(page.Bounds().Dx())*scale), 0, imaging.Lanczos)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// largestPageImage decodes the page's image XObjects and keeps the biggest
// one. Object numbers are visited in sorted order so the pick is stable.
func largestPageImage(imgs map[int]model.Image) (image.Image, error) {
	if len(imgs) == 0 {
		return nil, fmt.Errorf("no embedded images")
	}
	objNrs := make([]int, 0, len(imgs))
	for nr := range imgs {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)
	var best image.Image
	for _, nr := range objNrs {
		im := imgs[nr]
		decoded, err := imaging.Decode(im)
		if err != nil {
			continue
		}
		if best == nil || area(decoded) > area(best) {
			best = decoded
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no decodable embedded image")
	}
	return best, nil
}

func area(img image.Image) int {
	return img.Bounds().Dx() * img.Bounds().Dy()
}
