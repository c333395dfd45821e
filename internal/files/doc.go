// Package files provides file system operations and discovery utilities
// for the data preparation step.
//
// This package contains two main components:
//
// Discovery: finds the yearly accounting extracts (files named
// <yyyy>*.csv) in a directory and returns them ordered by year.
//
// Manager: resolves paths against the configured directories and writes
// output files atomically through a temporary sibling.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	extracts, err := discovery.FindExtracts(paths.ExtractsDir)
//	if err != nil {
//		return err
//	}
//	extracts = files.FilterYears(extracts, cfg.Analysis.LastYear)
package files
