// Package quality keeps the append-only data-quality log: rows skipped
// during import, rejected files, descriptions that fell through to the
// fallback category and identity collisions.
package quality

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Kind classifies an issue.
type Kind string

const (
	KindRowError               Kind = "row_error"
	KindStructureError         Kind = "structure_error"
	KindCategorizationFallback Kind = "categorization_fallback"
	KindDuplicateIdentity      Kind = "duplicate_identity"
)

// Kinds lists every issue kind.
var Kinds = []Kind{KindRowError, KindStructureError, KindCategorizationFallback, KindDuplicateIdentity}

// Issue is one row in the quality log. Ref identifies the offending thing:
// "file:row" for row errors, a path for structure errors, a transaction id
// otherwise.
type Issue struct {
	Timestamp time.Time
	RunID     string
	Layer     string
	Kind      Kind
	Source    string
	Ref       string
	Detail    string
}

// Header is the CSV header of the quality log.
const Header = "timestamp,run_id,layer,kind,source,ref,detail"

const (
	numFields    = 7
	colTimestamp = 0
	colRunID     = 1
	colLayer     = 2
	colKind      = 3
	colSource    = 4
	colRef       = 5
	colDetail    = 6
)

// MarshalIssue converts an Issue to a CSV row.
func MarshalIssue(i Issue) []string {
	row := make([]string, numFields)
	row[colTimestamp] = i.Timestamp.UTC().Format(time.RFC3339)
	row[colRunID] = i.RunID
	row[colLayer] = i.Layer
	row[colKind] = string(i.Kind)
	row[colSource] = i.Source
	row[colRef] = i.Ref
	row[colDetail] = i.Detail
	return row
}

// UnmarshalIssue converts a CSV row to an Issue.
func UnmarshalIssue(record []string) (Issue, error) {
	if len(record) != numFields {
		return Issue{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Issue{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Issue{
		Timestamp: ts,
		RunID:     record[colRunID],
		Layer:     record[colLayer],
		Kind:      Kind(record[colKind]),
		Source:    record[colSource],
		Ref:       record[colRef],
		Detail:    record[colDetail],
	}, nil
}

// Append writes issues to the log at path, creating the file and header if
// needed.
func Append(path string, issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating quality log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening quality log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, issue := range issues {
		if err := cw.Write(MarshalIssue(issue)); err != nil {
			return fmt.Errorf("writing issue %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all issues in the log at path. A missing file is an empty log.
func Read(path string) ([]Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening quality log: %w", err)
	}
	defer f.Close()

	return readIssues(f)
}

func readIssues(r io.Reader) ([]Issue, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading quality log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var issues []Issue
	for i, rec := range records[1:] {
		issue, err := UnmarshalIssue(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// CountByKind tallies issues per kind.
func CountByKind(issues []Issue) map[Kind]int {
	counts := make(map[Kind]int)
	for _, i := range issues {
		counts[i.Kind]++
	}
	return counts
}

// ForRun returns the issues recorded under runID.
func ForRun(issues []Issue, runID string) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.RunID == runID {
			out = append(out, i)
		}
	}
	return out
}
