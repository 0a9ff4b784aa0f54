// Package logging provides the structured logging interface used by bigcalc.
// The default backend is zerolog; a log.Logger adapter exists for tests and
// embedding.
//
// The biguint and expr packages never log.
package logging
