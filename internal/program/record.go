package program

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRecordDir points to the conventional location for stored workflow
// records when loading by name.
const DefaultRecordDir = "workflows"

// Record is the serialized workflow shape exchanged with persistence, the AI
// generator, and the execution engine: a trigger descriptor alongside the
// compiled steps.
type Record struct {
	TriggerType   string         `json:"trigger_type" yaml:"trigger_type"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty" yaml:"trigger_config,omitempty"`
	Steps         []Instruction  `json:"steps" yaml:"steps"`
}

// NewRecord packs a compiler result into its wire shape.
func NewRecord(td TriggerDescriptor, prog Program) Record {
	td = td.Clone()
	return Record{
		TriggerType:   td.Type,
		TriggerConfig: td.Config,
		Steps:         prog.Clone(),
	}
}

// Descriptor returns the record's trigger side channel.
func (r Record) Descriptor() TriggerDescriptor {
	return TriggerDescriptor{Type: r.TriggerType, Config: r.TriggerConfig}.Clone()
}

// Program returns the record's instruction sequence.
func (r Record) Program() Program {
	return Program(r.Steps).Clone()
}

// ParseRecord decodes a workflow record from YAML or JSON bytes. Steps with
// unrecognized step_type values decode like any other; they are preserved so
// round-tripping externally supplied data degrades gracefully instead of
// failing.
func ParseRecord(data []byte) (Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, fmt.Errorf("program: record payload is empty")
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("program: decode record: %w", err)
	}
	return rec, nil
}

// LoadRecordReader reads record data from an io.Reader.
func LoadRecordReader(r io.Reader) (Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Record{}, fmt.Errorf("program: read record: %w", err)
	}
	return ParseRecord(content)
}

// LoadRecordFile loads a workflow record from an explicit file path.
func LoadRecordFile(path string) (Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("program: read %s: %w", path, err)
	}
	rec, parseErr := ParseRecord(content)
	if parseErr != nil {
		return Record{}, fmt.Errorf("program: %s: %w", path, parseErr)
	}
	return rec, nil
}

// EncodeYAML renders the record for on-disk storage.
func (r Record) EncodeYAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("program: encode record: %w", err)
	}
	return data, nil
}

// EncodeJSON renders the record for submission to the hosting application.
func (r Record) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("program: encode record: %w", err)
	}
	return data, nil
}

// SaveRecordFile writes the record as YAML, creating parent directories as
// needed.
func SaveRecordFile(path string, rec Record) error {
	data, err := rec.EncodeYAML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("program: ensure %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("program: write %s: %w", path, err)
	}
	return nil
}
