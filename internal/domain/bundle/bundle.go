// Package bundle holds the capture-side values: the candidate image, the per-session
// draft and the Bundle handed to the results page.
package bundle

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/prodlens/internal/domain"
)

// Bundle is the encoded image plus filter text, created at submit time and consumed once.
type Bundle struct {
	imageData  string
	filterText string
}

// New validates imageData (standard base64, no data-URL header) and builds a Bundle.
// filterText is kept verbatim, empty included.
func New(imageData, filterText string) (Bundle, error) {
	if imageData == "" {
		return Bundle{}, fmt.Errorf("%w: empty image data", domain.ErrEncoding)
	}
	if strings.HasPrefix(imageData, "data:") {
		return Bundle{}, fmt.Errorf("%w: image data must not carry a data URL header", domain.ErrEncoding)
	}
	if _, err := base64.StdEncoding.DecodeString(imageData); err != nil {
		return Bundle{}, fmt.Errorf("%w: image data is not base64: %w", domain.ErrEncoding, err)
	}
	return Bundle{imageData: imageData, filterText: filterText}, nil
}

// ImageData returns the base64 image payload.
func (b Bundle) ImageData() string { return b.imageData }

// FilterText returns the user-supplied filter.
func (b Bundle) FilterText() string { return b.filterText }

// Image decodes the payload back into the original bytes.
func (b Bundle) Image() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b.imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncoding, err)
	}
	return data, nil
}

type bundleJSON struct {
	ImageData  string `json:"imageData"`
	FilterText string `json:"filterText"`
}

// MarshalJSON encodes the stored form {"imageData": ..., "filterText": ...}.
func (b Bundle) MarshalJSON() ([]byte, error) {
	return json.Marshal(bundleJSON{ImageData: b.imageData, FilterText: b.filterText})
}

// UnmarshalJSON decodes and re-validates the stored form.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw bundleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	}
	nb, err := New(raw.ImageData, raw.FilterText)
	if err != nil {
		return err
	}
	*b = nb
	return nil
}
