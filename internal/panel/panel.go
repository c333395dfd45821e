package panel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	apperrors "stickycost/internal/errors"
)

// ErrDuplicateFirmYear is wrapped by the INTEGRITY error New returns when a
// (OrgNr, Year) pair occurs more than once.
var ErrDuplicateFirmYear = errors.New("duplicate firm-year")

// maxReportedDuplicates bounds the keys listed in a duplicate error.
const maxReportedDuplicates = 5

// Panel is a set of firm-year records unique on (OrgNr, Year).
type Panel struct {
	records []Record
	index   map[Key]int
}

// New builds a panel from records, failing if any firm-year occurs twice.
// The records are copied; input order is preserved.
func New(records []Record) (*Panel, error) {
	p := &Panel{
		records: make([]Record, len(records)),
		index:   make(map[Key]int, len(records)),
	}
	copy(p.records, records)

	var dups []Key
	dupCount := 0
	for i := range p.records {
		k := p.records[i].Key()
		if _, seen := p.index[k]; seen {
			dupCount++
			if len(dups) < maxReportedDuplicates {
				dups = append(dups, k)
			}
			continue
		}
		p.index[k] = i
	}

	if dupCount > 0 {
		shown := make([]string, len(dups))
		for i, k := range dups {
			shown[i] = fmt.Sprintf("%s/%d", k.OrgNr, k.Year)
		}
		return nil, apperrors.NewIntegrityError(
			"not all firm-years are unique",
			fmt.Errorf("%w: %d duplicate rows (first: %s)", ErrDuplicateFirmYear, dupCount, strings.Join(shown, ", ")),
		).WithContext("duplicates", dupCount)
	}

	return p, nil
}

// Len returns the number of firm-years.
func (p *Panel) Len() int {
	return len(p.records)
}

// Records returns a copy of the records in panel order.
func (p *Panel) Records() []Record {
	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}

// Lookup returns the record for a firm-year.
func (p *Panel) Lookup(orgNr string, year int) (Record, bool) {
	i, ok := p.index[Key{OrgNr: orgNr, Year: year}]
	if !ok {
		return Record{}, false
	}
	return p.records[i], true
}

// Years returns the distinct accounting years in ascending order.
func (p *Panel) Years() []int {
	seen := make(map[int]struct{})
	for i := range p.records {
		seen[p.records[i].Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Filter returns a new panel with the records for which keep returns true.
func (p *Panel) Filter(keep func(*Record) bool) *Panel {
	out := &Panel{index: make(map[Key]int)}
	for i := range p.records {
		if keep(&p.records[i]) {
			out.index[p.records[i].Key()] = len(out.records)
			out.records = append(out.records, p.records[i])
		}
	}
	return out
}

// Update calls fn on every record in place. fn must not change OrgNr or
// Year; Update fails if it does, leaving the panel partially updated.
func (p *Panel) Update(fn func(*Record) error) error {
	for i := range p.records {
		r := &p.records[i]
		key := r.Key()
		if err := fn(r); err != nil {
			return err
		}
		if r.Key() != key {
			return fmt.Errorf("update changed firm-year key %s/%d", key.OrgNr, key.Year)
		}
	}
	return nil
}
