package model

import "fmt"

// Failure taxonomy for the reconciliation pipeline. A stage failure is caught
// and logged at run level; it never crashes the process (persisted state is
// only written at the end of a fully successful run).

// SchemaMismatchError reports an expected column absent from a source
// extract; normalization cannot proceed for that record set.
type SchemaMismatchError struct {
	Source string
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: expected column %q not found", e.Source, e.Column)
}

// JoinAmbiguityError reports a lookup expected to match at most one row that
// matched several, e.g. duplicate settlement rows for one operation id.
type JoinAmbiguityError struct {
	Key     string
	Value   string
	Matches int
}

func (e *JoinAmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous join on %s=%s: %d matches, expected at most one", e.Key, e.Value, e.Matches)
}

// OrphanReferenceError reports a shipping leg with no eligible sale leg to
// apportion its cost onto. Logged, never silently dropped.
type OrphanReferenceError struct {
	ExternalReference string
	OperationID       string
}

func (e *OrphanReferenceError) Error() string {
	return fmt.Sprintf("orphan shipping leg: reference %s (operation %s) has no eligible sale leg", e.ExternalReference, e.OperationID)
}

// BalanceInvariantError reports that the post-aggregation monetary sum
// diverged from the pre-aggregation sum beyond the rounding tolerance.
type BalanceInvariantError struct {
	Field  string
	Before string
	After  string
}

func (e *BalanceInvariantError) Error() string {
	return fmt.Sprintf("balance invariant violated for %s: %s before aggregation, %s after", e.Field, e.Before, e.After)
}
