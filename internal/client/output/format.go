package output

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mindflowai/mindflow/internal/reference"
)

// Format selects how references are rendered
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatTable, FormatJSON, FormatYAML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("invalid output format %q. Expected table, json, or yaml", name)
	}
}

// WriteYAML writes v as a YAML document to w
func WriteYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteReferences renders refs to w in the requested format.
// The table omits file text and shortens hashes.
func WriteReferences(w io.Writer, refs []reference.Reference, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, refs, nil)
	case FormatYAML:
		return WriteYAML(w, refs)
	default:
		table := NewTableWriterTo(w)
		table.WriteHeader("PATH", "SIZE", "HASH")
		for _, ref := range refs {
			table.WriteRow(ref.Path, strconv.Itoa(ref.SizeBytes), ref.ShortHash())
		}
		return table.Flush()
	}
}
