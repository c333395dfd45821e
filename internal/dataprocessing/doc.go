// Package dataprocessing turns the yearly accounting extracts into panel
// records.
//
// # Components
//
//  1. Parser: reads one ;-separated extract and derives the canonical
//     accounting items from the raw columns.
//  2. Loader: parses the extracts concurrently and concatenates them in
//     year order.
//  3. Summarizer: per-year coverage of the loaded rows.
//
// # Missing values
//
// A blank reported item means the firm reported nothing for it, so it is
// read as zero. The derived items are
//
//	Salg            = Salgsinntekt
//	Driftskostnader = Sum inntekter - Driftsresultat
//	Varekostnader   = Varekostnad + Endring i beholdning av varer ...
//	Eiendeler       = SUM EIENDELER
//	Lonnskostnader  = Loennskostnad
//	Leverandorgjeld = Leverandoergjeld
//	Varelager       = (Varer, else Sum varer) + Biologiske eiendeler
//	Kundefordringer = Sum fordringer, else Kundefordringer
//
// An empty industry code becomes MISSING. The nominal sales, payroll and
// asset values are copied before any deflation.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(dataprocessing.Options{LastYear: 2021}, logger)
//	records, stats, err := loader.Load(ctx, extracts)
package dataprocessing
