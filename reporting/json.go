// Package reporting renders run summaries for machine consumption.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zacjones93/script-kit-next-sub009/types"
)

// WriteSummary encodes the full run summary as one indented JSON document.
// With --json this is the only thing the harness prints on stdout.
func WriteSummary(w io.Writer, summary *types.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}
