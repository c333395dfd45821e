// Package panel holds the firm-year panel: one Record per (organisation
// number, accounting year), the canonical financial fields, and the lag join
// that copies a firm's own earlier records onto later ones.
//
// A Panel is always unique on (OrgNr, Year); New refuses duplicate input with
// an INTEGRITY error. Lag values and the GDP fields are attached by
// AttachLags, which partitions the panel by year and performs a left-outer
// join of every in-scope year against the one and two years before it.
// Unmatched rows keep missing lag values; they are removed later by sample
// selection, never here.
//
// Missing lag values are represented as NaN. Raw fields are never missing:
// the ingestion step applies an explicit zero-fill rule before records reach
// this package.
package panel
