// Package ocr suggests a dollar amount for an uploaded income document so the
// category detail field can be prefilled. Hints are best-effort; callers
// ignore errors.
package ocr

import (
	"bytes"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// AmountHint runs light preprocessing plus Tesseract over an image and
// returns the largest plausible dollar amount found, in whole dollars.
func AmountHint(data []byte) (int64, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < 900 {
		gray = imaging.Resize(gray, 0, 1300, imaging.Lanczos)
	}

	tmp, err := os.CreateTemp("", "ocr-hint-*.png")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpName)
	if err := imaging.Save(gray, tmpName); err != nil {
		return 0, fmt.Errorf("save preprocessed: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	_ = client.SetWhitelist("0123456789$.,- ")
	if err := client.SetImage(tmpName); err != nil {
		return 0, err
	}
	text, err := client.Text()
	if err != nil {
		return 0, fmt.Errorf("tesseract: %w", err)
	}
	return ParseAmount(text)
}
