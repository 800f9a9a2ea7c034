package bundle

import (
	"encoding/json"
	"fmt"
)

// Draft is the capture page state of one session: at most one image and the filter text.
type Draft struct {
	image      *Candidate
	filterText string
}

// Image returns the held image, if any.
func (d Draft) Image() (Candidate, bool) {
	if d.image == nil {
		return Candidate{}, false
	}
	return *d.image, true
}

// FilterText returns the current filter text.
func (d Draft) FilterText() string { return d.filterText }

// WithImage returns a copy holding c instead of the previous image.
func (d Draft) WithImage(c Candidate) Draft {
	d.image = &c
	return d
}

// WithFilterText returns a copy with the filter replaced verbatim.
func (d Draft) WithFilterText(text string) Draft {
	d.filterText = text
	return d
}

type candidateJSON struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type draftJSON struct {
	Image      *candidateJSON `json:"image,omitempty"`
	FilterText string         `json:"filterText"`
}

// MarshalJSON encodes the draft for the session store.
func (d Draft) MarshalJSON() ([]byte, error) {
	raw := draftJSON{FilterText: d.filterText}
	if d.image != nil {
		raw.Image = &candidateJSON{
			Name:        d.image.name,
			ContentType: d.image.contentType,
			Data:        d.image.data,
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a stored draft.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw draftJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode draft: %w", err)
	}
	*d = Draft{filterText: raw.FilterText}
	if raw.Image != nil {
		c := NewCandidate(raw.Image.Name, raw.Image.ContentType, raw.Image.Data)
		d.image = &c
	}
	return nil
}
