package analysis

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// dataURIPrefix matches the "data:image/jpeg;base64," style prefix that
// camera clients prepend to captured photos.
var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// DecodeImagePayload turns a base64 or data-URI image string into raw bytes.
// Returns ErrMissingImage when the payload is empty after stripping.
func DecodeImagePayload(payload string) ([]byte, error) {
	payload = dataURIPrefix.ReplaceAllString(payload, "")
	if payload == "" {
		return nil, ErrMissingImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("could not decode base64 image data: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrMissingImage
	}
	return data, nil
}
