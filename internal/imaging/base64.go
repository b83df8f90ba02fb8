package imaging

import (
	"encoding/base64"
	"strings"

	"github.com/Brownie44l1/dermascan-api/internal/apperr"
)

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeBase64 decodes an image payload sent as plain base64 or as a data URL
// ("data:image/png;base64,....").
func DecodeBase64(payload string) ([]byte, error) {
	data := strings.TrimSpace(payload)
	if strings.HasPrefix(data, "data:") {
		idx := strings.IndexByte(data, ',')
		if idx < 0 {
			return nil, apperr.New(apperr.KindInput, "imaging.base64", "malformed data URL")
		}
		data = data[idx+1:]
	}
	if data == "" {
		return nil, apperr.New(apperr.KindInput, "imaging.base64", "No image data provided")
	}

	var lastErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(data)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, apperr.Wrap(apperr.KindInput, "imaging.base64", "invalid base64 image data", lastErr)
}
