// Package report writes the batch scan output (spec.md 6's "result
// report" collaborator): a pretty-printed JSON array of scanner.ScanResult,
// one entry per endpoint, in the order the batch produced them.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-mclib/mcprobe/scanner"
)

// WriteJSON writes results to w as an indented JSON array, mirroring
// original_source/src/main.rs's serde_json::to_string_pretty output.
// ScanResult's own json tags (omitempty on every optional field) produce
// the same sparse per-record shape as the Rust original's
// skip_serializing_if attributes.
func WriteJSON(w io.Writer, results []scanner.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// WriteFile writes results to path as pretty-printed JSON, creating or
// truncating the file.
func WriteFile(path string, results []scanner.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteJSON(f, results); err != nil {
		return fmt.Errorf("write results to %s: %w", path, err)
	}
	return nil
}

// Summary counts the outcomes of a batch, for the end-of-run log line
// (SPEC_FULL.md 6.2).
type Summary struct {
	Total       int
	OK          int
	Failed      int
	Cracked     int
	Premium     int
	Whitelisted int
	Unknown     int
}

// Summarize tallies results into a Summary. Auth-mode counts are only
// meaningful when the batch ran with CheckAuth enabled; otherwise every
// AuthMode field is nil and the four mode counters stay zero.
func Summarize(results []scanner.ScanResult) Summary {
	var s Summary
	s.Total = len(results)
	for _, r := range results {
		if r.Error != "" {
			s.Failed++
			continue
		}
		s.OK++

		if r.AuthMode == nil {
			continue
		}
		switch *r.AuthMode {
		case 0:
			s.Cracked++
		case 1:
			s.Premium++
		case 2:
			s.Whitelisted++
		default:
			s.Unknown++
		}
	}
	return s
}
