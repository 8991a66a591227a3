package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/DymOK93/GWM-Harman-VCE/internal/edit"
)

// ChangeRow is one applied field edit.
type ChangeRow struct {
	Property string `json:"property"`
	Position string `json:"position"`
	Before   string `json:"before"`
	After    string `json:"after"`
}

// Session summarizes one editor run.
type Session struct {
	ID           string      `json:"session"`
	CreatedAt    time.Time   `json:"createdAt"`
	MapPath      string      `json:"map"`
	Source       string      `json:"source"`
	Destination  string      `json:"destination,omitempty"`
	Format       string      `json:"format"`
	ConfigSize   int         `json:"configSize"`
	ProjectCode  int         `json:"projectCode"`
	Checksum     *int        `json:"checksum,omitempty"`
	OutputSha256 string      `json:"outputSha256,omitempty"`
	Written      bool        `json:"written"`
	Changes      []ChangeRow `json:"changes"`
}

// Rows converts edit changes into report rows.
func Rows(changes []edit.Change) []ChangeRow {
	rows := make([]ChangeRow, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, ChangeRow{
			Property: c.Name,
			Position: c.Position.String(),
			Before:   c.Before,
			After:    c.After,
		})
	}
	return rows
}

func SaveSessionJSON(rep Session, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadSessionJSON(path string) (Session, error) {
	var rep Session
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
