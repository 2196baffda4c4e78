// Package report renders the persisted state collection for output.
package report

import (
	"encoding/json"
	"time"

	"github.com/user/registry-watch/pkg/types"
)

// summary is the JSON report envelope.
type summary struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	TotalImages      int                `json:"total_images"`
	UpdatesAvailable int                `json:"updates_available"`
	Dismissed        int                `json:"dismissed"`
	States           []types.ImageState `json:"states"`
}

// JSONFormatter renders the state collection as indented JSON.
type JSONFormatter struct{}

// Format implements ReportFormatter.
func (f JSONFormatter) Format(states []types.ImageState) (string, error) {
	s := summary{
		GeneratedAt: time.Now(),
		TotalImages: len(states),
		States:      states,
	}
	for _, st := range states {
		if st.HasUpdate {
			s.UpdatesAvailable++
		}
		if st.Dismissed {
			s.Dismissed++
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatName implements ReportFormatter.
func (f JSONFormatter) FormatName() string {
	return "json"
}
