package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

var ErrNotImage = errors.New("file is not a supported image type")

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
}

// SniffImageType detects the media type from the file bytes and rejects
// anything that is not an allowed image format.
func SniffImageType(data []byte) (types.Type, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return types.Unknown, ErrNotImage
	}
	if _, ok := allowedImageTypes[kind.Extension]; !ok {
		return types.Unknown, ErrNotImage
	}
	return kind, nil
}

// DataURL builds a locally resolvable preview reference for the file bytes.
func DataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// ParseDataURL recovers the media type and raw bytes from a preview
// reference produced by DataURL.
func ParseDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	mime, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, errors.New("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data URL payload: %w", err)
	}
	return mime, data, nil
}
