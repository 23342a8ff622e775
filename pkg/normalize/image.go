package normalize

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
)

// recompressImage decodes a declared image, scales it down to the width cap
// when needed and re-encodes it as JPEG. An undecodable image is a hard
// rejection: the caller gets no record at all.
func recompressImage(name string, data []byte) (models.UploadedFile, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("decode image %s: %w", name, err)
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}
	b, err := encodeJPEG(img)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("encode image %s: %w", name, err)
	}
	return models.UploadedFile{Name: name, MimeType: "image/jpeg", Data: dataURI("image/jpeg", b)}, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
