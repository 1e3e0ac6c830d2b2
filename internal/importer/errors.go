package importer

import "fmt"

// RowError describes a single source row that could not be parsed.
// The row is skipped; the rest of the file still imports.
type RowError struct {
	File   string
	Row    int // 1-based line number in the file
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: row %d: %s: %v", e.File, e.Row, e.Reason, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// StructureError means a whole file was rejected: no recognizable account
// identifier, an unknown export layout, or an unreadable file.
type StructureError struct {
	Path   string
	Reason string
	Err    error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *StructureError) Unwrap() error { return e.Err }
