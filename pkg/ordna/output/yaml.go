package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Op          Op              `yaml:"op"`
	Root        string          `yaml:"root"`
	DryRun      bool            `yaml:"dry_run"`
	Moves       []MoveInfo      `yaml:"moves"`
	Skips       []SkipInfo      `yaml:"skips,omitempty"`
	Errors      []ErrorInfo     `yaml:"errors,omitempty"`
	Duplicates  []DuplicateInfo `yaml:"duplicates,omitempty"`
	Stats       yamlStats       `yaml:"stats"`
	Categories  []CategoryInfo  `yaml:"categories,omitempty"`
	Restored    int             `yaml:"restored,omitempty"`
	Warnings    []string        `yaml:"warnings,omitempty"`
	Interrupted bool            `yaml:"interrupted"`
}

// yamlStats represents run statistics in YAML output.
type yamlStats struct {
	Moved      int            `yaml:"moved"`
	Skipped    int            `yaml:"skipped"`
	Errors     int            `yaml:"errors"`
	ByMethod   map[string]int `yaml:"by_method,omitempty"`
	ByCategory map[string]int `yaml:"by_category,omitempty"`
	BytesMoved int64          `yaml:"bytes_moved"`
	BytesHuman string         `yaml:"bytes_human"`
	Duration   string         `yaml:"duration,omitempty"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts Result to the YAML output structure.
func (f *YAMLFormatter) buildOutput(r *Result) yamlOutput {
	moves := r.Moves
	if moves == nil {
		moves = []MoveInfo{}
	}

	return yamlOutput{
		Op:         r.Op,
		Root:       r.Root,
		DryRun:     r.DryRun,
		Moves:      moves,
		Skips:      r.Skips,
		Errors:     r.Errors,
		Duplicates: r.Duplicates,
		Stats: yamlStats{
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

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
