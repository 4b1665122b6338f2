// Package qrimage renders URLs into scannable QR images and reads them back.
package qrimage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

const imageSize = 256

// Codec implements domain.ImageCodec using go-qrcode for rendering and
// gozxing for reading scanned images.
type Codec struct{}

func NewCodec() Codec {
	return Codec{}
}

// Render encodes text into a 256px PNG with medium error correction, enough
// redundancy for printed badges that get worn or partially covered.
func (Codec) Render(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot render empty text")
	}

	png, err := qrcode.Encode(text, qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// Decode extracts the text embedded in a QR image. PNG and JPEG are accepted.
func (Codec) Decode(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to prepare image for scanning: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("no QR code found in image: %w", err)
	}

	return result.GetText(), nil
}
