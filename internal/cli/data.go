package cli

import (
	"fmt"
	"os"

	"github.com/roach88/chronicle/internal/document"
)

// parseData resolves the --data/--data-file flags into a document.
// Exactly one of the two must be provided.
func parseData(data, dataFile string) (document.Value, error) {
	switch {
	case data != "" && dataFile != "":
		return nil, fmt.Errorf("--data and --data-file are mutually exclusive")
	case data != "":
		return parseDocument([]byte(data))
	case dataFile != "":
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dataFile, err)
		}
		return parseDocument(raw)
	default:
		return nil, fmt.Errorf("one of --data or --data-file is required")
	}
}

func parseDocument(raw []byte) (document.Value, error) {
	v, err := document.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid document JSON: %w", err)
	}
	return v, nil
}
