package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cleared-dev/ledgerflow/internal/marts"
)

// Service provides in-memory lookup over the category taxonomy.
type Service struct {
	entries    []Entry
	byCategory map[string]Entry
}

// NewService creates a Service from a slice of entries. It returns an
// error if a category appears twice.
func NewService(entries []Entry) (*Service, error) {
	byCategory := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, dup := byCategory[e.Category]; dup {
			return nil, fmt.Errorf("duplicate category %s", e.Category)
		}
		byCategory[e.Category] = e
	}
	return &Service{entries: entries, byCategory: byCategory}, nil
}

// Default returns a Service over DefaultTaxonomy.
func Default() *Service {
	svc, err := NewService(DefaultTaxonomy())
	if err != nil {
		panic(err)
	}
	return svc
}

// Load reads a taxonomy CSV and returns a Service.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening taxonomy: %w", err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}
	svc, err := NewService(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return svc, nil
}

// All returns all entries.
func (s *Service) All() []Entry {
	return s.entries
}

// Get returns the entry for a category.
func (s *Service) Get(category string) (Entry, bool) {
	e, ok := s.byCategory[category]
	return e, ok
}

// Exists reports whether a category has an entry.
func (s *Service) Exists(category string) bool {
	_, ok := s.byCategory[category]
	return ok
}

// ByDomain returns the categories in domain, in file order.
func (s *Service) ByDomain(d Domain) []string {
	var result []string
	for _, e := range s.entries {
		if e.Domain == d {
			result = append(result, e.Category)
		}
	}
	return result
}

// Missing returns the categories with no entry, sorted and deduplicated.
func (s *Service) Missing(categories []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range categories {
		if !s.Exists(c) && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// AggregatorConfig returns the marts configuration described by the taxonomy.
func (s *Service) AggregatorConfig() marts.Config {
	meta := make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		meta[e.Category] = e.MetaCategory
	}
	return marts.NewConfig(meta,
		s.ByDomain(DomainIncome),
		s.ByDomain(DomainSavings),
		s.ByDomain(DomainExcluded),
	)
}

// Save writes the taxonomy to path, creating parent directories.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating taxonomy dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating taxonomy file: %w", err)
	}
	defer f.Close()

	if err := WriteEntries(f, s.entries); err != nil {
		return fmt.Errorf("writing taxonomy: %w", err)
	}
	return nil
}
