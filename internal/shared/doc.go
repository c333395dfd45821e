// Package shared holds helpers used across the stickycost packages.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler, a slog.Handler that records log output for assertions
//   - panel fixture builders that produce lagged firm-year panels
//
// Example usage:
//
//	func TestSelect(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    p := testutil.BuildPanel(t, 2008, testutil.Firm("A", "C", 2007, 100, 110, 120))
//	    ...
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "Selected sample")
//	}
//
// Nothing in this package is imported by production code.
package shared
