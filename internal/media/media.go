// Package media checks uploaded files by their content, not their name.
package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

var (
	ErrEmpty       = errors.New("file is empty")
	ErrTooLarge    = errors.New("file is too large")
	ErrUnsupported = errors.New("unsupported file type")
)

// Kind is a family of accepted content types.
type Kind int

const (
	Image Kind = iota
	ImageOrPDF
)

// Detect returns the sniffed media type of data without parameters.
func Detect(data []byte) string {
	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return mediaType
}

// Check sniffs data and returns it as an image of the accepted kind.
// maxBytes <= 0 disables the size limit.
func Check(data []byte, kind Kind, maxBytes int64) (domain.Image, error) {
	if len(data) == 0 {
		return domain.Image{}, ErrEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return domain.Image{}, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), maxBytes)
	}

	mediaType := Detect(data)

	accepted := strings.HasPrefix(mediaType, "image/")
	if kind == ImageOrPDF && mediaType == "application/pdf" {
		accepted = true
	}
	if !accepted {
		return domain.Image{}, fmt.Errorf("%w: %s", ErrUnsupported, mediaType)
	}

	return domain.Image{Data: data, ContentType: mediaType}, nil
}
