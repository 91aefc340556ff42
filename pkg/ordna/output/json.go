package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Op          Op              `json:"op"`
	Root        string          `json:"root"`
	DryRun      bool            `json:"dry_run"`
	Moves       []MoveInfo      `json:"moves"`
	Skips       []SkipInfo      `json:"skips,omitempty"`
	Errors      []ErrorInfo     `json:"errors,omitempty"`
	Duplicates  []DuplicateInfo `json:"duplicates,omitempty"`
	Stats       jsonStats       `json:"stats"`
	Categories  []CategoryInfo  `json:"categories,omitempty"`
	Restored    int             `json:"restored,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
	Interrupted bool            `json:"interrupted"`
}

// jsonStats represents run statistics in JSON output.
type jsonStats struct {
	Moved      int            `json:"moved"`
	Skipped    int            `json:"skipped"`
	Errors     int            `json:"errors"`
	ByMethod   map[string]int `json:"by_method,omitempty"`
	ByCategory map[string]int `json:"by_category,omitempty"`
	BytesMoved int64          `json:"bytes_moved"`
	BytesHuman string         `json:"bytes_human"`
	Duration   string         `json:"duration,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Result to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Result) jsonOutput {
	moves := r.Moves
	if moves == nil {
		moves = []MoveInfo{}
	}

	return jsonOutput{
		Op:         r.Op,
		Root:       r.Root,
		DryRun:     r.DryRun,
		Moves:      moves,
		Skips:      r.Skips,
		Errors:     r.Errors,
		Duplicates: r.Duplicates,
		Stats: jsonStats{
			Moved:      r.Stats.Moved,
			Skipped:    r.Stats.Skipped,
			Errors:     r.Stats.Errors,
			ByMethod:   r.Stats.ByMethod,
			ByCategory: r.Stats.ByCategory,
			BytesMoved: r.Stats.BytesMoved,
			BytesHuman: r.Stats.BytesHuman,
			Duration:   formatDurationString(r.Stats.Duration),
		},
		Categories:  r.Categories,
		Restored:    r.Restored,
		Warnings:    r.Warnings,
		Interrupted: r.Interrupted,
	}
}

// formatDurationString formats a duration as a string for structured output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
