package apperrors

import "errors"

var (
	// ErrProfiling indicates a table could not be profiled (empty or malformed).
	// Fatal to that table's analysis.
	ErrProfiling = errors.New("profiling failed")

	// ErrInsufficientData indicates no compatible columns were found between
	// the two tables. Not fatal: the suggestion set is empty and the user
	// falls back to manual mapping.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrTypeMismatch indicates a candidate key cannot be evaluated: either a
	// composite field collides with the internal key delimiter, or the key
	// references a column that no longer exists. Fatal to that one candidate.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrJoinExecution indicates the selected key was no longer valid at
	// execution time. Fatal to the execution attempt; re-selection recovers.
	ErrJoinExecution = errors.New("join execution failed")
)
