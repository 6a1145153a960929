package builder

import "fmt"

// Kind names one of the five error categories spec §7 defines. Concrete
// diagnostic types below each report their Kind() rather than requiring
// callers to string-match fmt.Errorf text, mirroring the teacher's typed
// FileError/EdgeError over bare errors.
type Kind string

const (
	KindIoFailure             Kind = "IoFailure"
	KindSemanticParseError    Kind = "SemanticParseError"
	KindUnknownSymbol         Kind = "UnknownSymbol"
	KindInconsistentReference Kind = "InconsistentReference"
	KindInvariantViolation    Kind = "InvariantViolation"
)

// Diagnostic is any accumulated builder error; all concrete types below
// implement it in addition to the standard error interface.
type Diagnostic interface {
	error
	Kind() Kind
}

// IoFailure reports a SourceReader.Read failure. The affected node's
// context_size is set to 0 rather than failing the build.
type IoFailure struct {
	Path string
	Err  error
}

func (e *IoFailure) Error() string { return fmt.Sprintf("io failure reading %q: %v", e.Path, e.Err) }
func (e *IoFailure) Kind() Kind    { return KindIoFailure }
func (e *IoFailure) Unwrap() error { return e.Err }

// SemanticParseError reports a structurally invalid entry in otherwise
// well-formed JSON, e.g. a Definition with an unknown kind or a Reference
// with an unknown role.
type SemanticParseError struct {
	Location string
	Message  string
}

func (e *SemanticParseError) Error() string {
	return fmt.Sprintf("semantic parse error at %s: %s", e.Location, e.Message)
}
func (e *SemanticParseError) Kind() Kind { return KindSemanticParseError }

// UnknownSymbol reports a reference with no resolvable node. The solver
// reports an unknown start index through its own error type.
type UnknownSymbol struct {
	Symbol string
}

func (e *UnknownSymbol) Error() string { return fmt.Sprintf("unknown symbol %q", e.Symbol) }
func (e *UnknownSymbol) Kind() Kind    { return KindUnknownSymbol }

// InconsistentReference reports a Reference that could not be reconciled
// with the Definitions around it (e.g. a duplicate definition, an
// enclosing symbol with no node, or a missing or wrong-variant target).
// The reference is skipped; the build continues.
type InconsistentReference struct {
	Symbol string
	Reason string
}

func (e *InconsistentReference) Error() string {
	return fmt.Sprintf("inconsistent reference %q: %s", e.Symbol, e.Reason)
}
func (e *InconsistentReference) Kind() Kind { return KindInconsistentReference }

// InvariantViolation reports a §3.5 invariant the builder could not
// establish for the given input even on a best-effort basis.
type InvariantViolation struct {
	Description string
}

func (e *InvariantViolation) Error() string { return fmt.Sprintf("invariant violation: %s", e.Description) }
func (e *InvariantViolation) Kind() Kind    { return KindInvariantViolation }
