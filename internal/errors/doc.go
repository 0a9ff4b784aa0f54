// Package apperrors defines the application error types and the mapping from
// errors to process exit codes.
//
// Errors from the biguint and expr packages are classified with errors.Is
// against their sentinels, so callers may wrap them freely with fmt.Errorf
// and %w.
package apperrors
