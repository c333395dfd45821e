package dataprocessing

import "time"

// Options configures loading behavior
type Options struct {
	// LastYear drops rows with a later accounting year; 0 keeps all rows.
	LastYear int

	// Workers bounds the number of extracts parsed at once.
	Workers int
}

// DefaultOptions returns default loading options
func DefaultOptions() Options {
	return Options{
		LastYear: 2021,
		Workers:  4,
	}
}

// LoadStats summarises a Load call.
type LoadStats struct {
	Files      int
	Rows       int
	Kept       int
	AfterLast  int
	NoIndustry int
	Duration   time.Duration
}

func (s *LoadStats) add(p ParseStats) {
	s.Rows += p.Rows
	s.Kept += p.Kept
	s.AfterLast += p.AfterLast
	s.NoIndustry += p.NoIndustry
}
