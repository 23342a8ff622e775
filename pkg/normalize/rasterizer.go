package normalize

import "image"

// Rasterizer renders the pages of a PDF to images. It is injected into the
// Normalizer so PDF support can be absent (nil or not Ready) without the
// normalization pipeline caring why.
type Rasterizer interface {
	// Ready reports whether the rasterizer can accept work.
	Ready() bool
	// RenderPages returns one image per page, page-ordered, scaled by the
	// given factor. An error means no usable pages; callers fall back to the
	// raw file.
	RenderPages(data []byte, scale float64) ([]image.Image, error)
}
