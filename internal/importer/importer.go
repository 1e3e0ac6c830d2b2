package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/ledgerflow/internal/id"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Parser converts the records of one export file into RawTransactions.
// Records include the header row.
type Parser interface {
	Format() string
	Source() model.SourceType
	Matches(header []string) bool
	ParseRecords(records [][]string) ([]model.RawTransaction, []*RowError)
}

// Registry holds named parsers in registration order.
type Registry struct {
	parsers map[string]Parser
	order   []Parser
}

// FileInfo describes a source file found under an import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	r.order = append(r.order, p)
}

// Detect returns the first registered parser that recognizes header, or nil.
func (r *Registry) Detect(header []string) Parser {
	for _, p := range r.order {
		if p.Matches(header) {
			return p
		}
	}
	return nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&ChaseCardParser{})
	return r
}

var supportedExts = map[string]bool{".csv": true, ".xlsx": true}

// Scan returns the supported export files under dir, walking subdirectories.
// A missing directory yields no files.
func Scan(dir string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !supportedExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", d.Name(), err)
		}
		files = append(files, FileInfo{Name: d.Name(), Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return files, nil
}

// Duplicate records a row whose identity was already seen in the batch.
type Duplicate struct {
	TransactionID string
	File          string
	Description   string
}

// Result is the outcome of importing one source directory.
type Result struct {
	Source          model.SourceType
	Files           int
	Transactions    []model.RawTransaction
	RowErrors       []*RowError
	StructureErrors []*StructureError
	Duplicates      []Duplicate
}

// Importer turns export files into deduplicated RawTransactions.
type Importer struct {
	registry *Registry
}

// New creates an Importer. A nil registry uses DefaultRegistry.
func New(registry *Registry) *Importer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Importer{registry: registry}
}

// ImportDir imports every supported file under dir as source. Rejected files
// are reported in Result.StructureErrors and do not stop the batch.
func (im *Importer) ImportDir(dir string, source model.SourceType) (*Result, error) {
	files, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: source}
	seen := make(map[string]bool)
	for _, f := range files {
		txns, rowErrs, err := im.ImportFile(f.Path, source)
		if err != nil {
			var se *StructureError
			if !errors.As(err, &se) {
				return nil, err
			}
			res.StructureErrors = append(res.StructureErrors, se)
			continue
		}
		res.Files++
		res.RowErrors = append(res.RowErrors, rowErrs...)
		for _, txn := range txns {
			if seen[txn.TransactionID] {
				res.Duplicates = append(res.Duplicates, Duplicate{
					TransactionID: txn.TransactionID,
					File:          txn.SourceFile,
					Description:   txn.RawDescription,
				})
				continue
			}
			seen[txn.TransactionID] = true
			res.Transactions = append(res.Transactions, txn)
		}
	}
	return res, nil
}

// ImportFile parses a single file. File-level problems are returned as a
// *StructureError; row-level problems are returned alongside the good rows.
// Lines above the column header are treated as a preamble and searched for
// the account when the path does not carry one.
func (im *Importer) ImportFile(path string, source model.SourceType) ([]model.RawTransaction, []*RowError, error) {
	account, accountErr := ExtractAccount(path)

	records, err := readRecords(path)
	if err != nil {
		return nil, nil, &StructureError{Path: path, Reason: "unreadable export", Err: err}
	}
	if len(records) == 0 {
		if accountErr != nil {
			return nil, nil, accountErr
		}
		return nil, nil, nil
	}

	p, header := im.detectHeader(records)
	if accountErr != nil {
		lines := records
		if p != nil {
			lines = records[:header+1]
		}
		acct, ok := matchAccount(joinRecords(lines)...)
		if !ok {
			return nil, nil, accountErr
		}
		account = acct
	}
	if p == nil {
		return nil, nil, &StructureError{Path: path, Reason: "unrecognized export header"}
	}
	if p.Source() != source {
		return nil, nil, &StructureError{
			Path:   path,
			Reason: fmt.Sprintf("%s export found in %s directory", p.Source(), source),
		}
	}

	name := filepath.Base(path)
	txns, rowErrs := p.ParseRecords(records[header:])
	for _, re := range rowErrs {
		re.File = name
		re.Row += header
	}
	for i := range txns {
		txns[i].SourceAccount = account
		txns[i].SourceType = source
		txns[i].SourceFile = name
		txns[i].TransactionID = id.TransactionID(txns[i].PostedDate, txns[i].Amount, txns[i].RawDescription, account)
	}
	return txns, rowErrs, nil
}

// maxPreamble is how many lines may precede the column header.
const maxPreamble = 10

// detectHeader returns the parser for the first recognized header row
// and that row's index, or nil.
func (im *Importer) detectHeader(records [][]string) (Parser, int) {
	for i, rec := range records {
		if i > maxPreamble {
			break
		}
		if p := im.registry.Detect(rec); p != nil {
			return p, i
		}
	}
	return nil, 0
}

func joinRecords(records [][]string) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = strings.Join(rec, " ")
	}
	return out
}

func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(f)
	}
	return readCSV(f)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	// Chase bank exports carry a trailing comma on data rows but not the header.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return records, nil
}
