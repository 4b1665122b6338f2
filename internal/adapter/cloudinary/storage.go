// Package cloudinary stores uploaded photos and rendered QR images.
package cloudinary

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadFolder = "qrgetsemani"

// Storage implements domain.FileStorage on Cloudinary. The returned locator
// is the public HTTPS delivery URL.
type Storage struct {
	cld *cloudinary.Cloudinary
}

func NewStorage(cloudName, apiKey, apiSecret string) (*Storage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &Storage{cld: cld}, nil
}

// Store uploads data under the given name and returns its public URL.
func (s *Storage) Store(ctx context.Context, data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("cannot store empty file")
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       uploadFolder,
		PublicID:     name,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return result.SecureURL, nil
}
