package persist

import (
	"encoding/json"
	"time"

	"github.com/kayz/promptsmith/internal/promptbuild"
)

// SavedConfig is a named prompt configuration
type SavedConfig struct {
	ID        int64
	Name      string
	Config    promptbuild.StructuredConfig
	Digest    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RenderRecord is one stored render of a configuration
type RenderRecord struct {
	ID         string
	ConfigName string // empty for ad-hoc renders
	BuilderID  string
	Encoding   promptbuild.Encoding
	Digest     string
	Text       string
	Chars      int
	CreatedAt  time.Time
}

// scanner interface for both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// toJSON converts an object to JSON string
func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// fromJSON parses JSON string into an object
func fromJSON(data string, v any) error {
	if data == "" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
