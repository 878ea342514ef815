package classify

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	_ "golang.org/x/image/webp" // register WebP
)

// DetectFormat checks that data is a decodable JPEG, PNG, GIF or WebP image
// and returns its format name. Only the header is decoded.
func DetectFormat(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: unreadable image: %w", domain.ErrInvalidInput, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: image has no pixels", domain.ErrInvalidInput)
	}
	return format, nil
}
