package media_test

import (
	"bytes"
	"testing"

	"github.com/nikolayk812/pharmacy-storefront/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegData  = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pdfData   = []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	textData  = []byte("definitely not a prescription")
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		kind      media.Kind
		maxBytes  int64
		wantType  string
		wantError error
	}{
		{
			name:     "png image: ok",
			data:     pngHeader,
			kind:     media.Image,
			wantType: "image/png",
		},
		{
			name:     "jpeg prescription: ok",
			data:     jpegData,
			kind:     media.ImageOrPDF,
			wantType: "image/jpeg",
		},
		{
			name:     "pdf prescription: ok",
			data:     pdfData,
			kind:     media.ImageOrPDF,
			wantType: "application/pdf",
		},
		{
			name:      "pdf as catalog image: error",
			data:      pdfData,
			kind:      media.Image,
			wantError: media.ErrUnsupported,
		},
		{
			name:      "plain text: error",
			data:      textData,
			kind:      media.ImageOrPDF,
			wantError: media.ErrUnsupported,
		},
		{
			name:      "empty: error",
			kind:      media.ImageOrPDF,
			wantError: media.ErrEmpty,
		},
		{
			name:      "over the limit: error",
			data:      append(bytes.Clone(pngHeader), make([]byte, 64)...),
			kind:      media.Image,
			maxBytes:  32,
			wantError: media.ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image, err := media.Check(tt.data, tt.kind, tt.maxBytes)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, image.ContentType)
			assert.Equal(t, tt.data, image.Data)
		})
	}
}

func TestDetectDropsParameters(t *testing.T) {
	assert.Equal(t, "text/plain", media.Detect(textData))
}
