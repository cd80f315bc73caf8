// Package storage uploads user avatars to Cloudinary.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"aquatrack/internal/config"
)

// AvatarStore uploads avatar images and returns their public URLs.
type AvatarStore struct {
	cld *cloudinary.Cloudinary
}

// NewAvatarStore creates an AvatarStore from the application configuration.
func NewAvatarStore(cfg *config.Config) (*AvatarStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &AvatarStore{cld: cld}, nil
}

// Upload stores the avatar under the avatars folder and returns its HTTPS URL.
func (s *AvatarStore) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:           "avatars",
		FilenameOverride: filename,
		UniqueFilename:   api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}
