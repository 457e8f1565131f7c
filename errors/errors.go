package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // conversion derivation
	PhaseEncode  Phase = "encode"  // native value to tagged value
	PhaseDecode  Phase = "decode"  // tagged value to native value
	PhaseSpec    Phase = "spec"    // specification build/finalize
	PhaseHost    Phase = "host"    // host object operations
	PhaseInvoke  Phase = "invoke"  // cross-contract invocation
	PhaseLoad    Phase = "load"    // contract binary loading
	PhaseGen     Phase = "gen"     // client binding generation
)

// Kind categorizes the error
type Kind string

const (
	// Conversion failures. Always recoverable by the immediate caller.
	KindWrongTag       Kind = "wrong_tag"
	KindNotAnObject    Kind = "not_an_object"
	KindMissingField   Kind = "missing_field"
	KindUnknownVariant Kind = "unknown_variant"
	KindOutOfRange     Kind = "out_of_range"

	// Specification failures. Detected at build time, fatal to the build.
	KindUnresolvedReference Kind = "unresolved_reference"
	KindDuplicateName       Kind = "duplicate_name"
	KindSignatureConflict   Kind = "signature_conflict"
	KindRecursiveType       Kind = "recursive_type"

	KindTypeMismatch  Kind = "type_mismatch"
	KindInvalidData   Kind = "invalid_data"
	KindInvalidHandle Kind = "invalid_handle"
	KindUnsupported   Kind = "unsupported"
	KindNilPointer    Kind = "nil_pointer"
	KindNotFound      Kind = "not_found"
	KindOutOfBounds   Kind = "out_of_bounds"
)

// Error is the structured error type used throughout the SDK
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	SpecType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.SpecType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.SpecType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", spec type ")
			b.WriteString(e.SpecType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("spec type ")
			b.WriteString(e.SpecType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.SpecType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// SpecType sets the specification type name
func (b *Builder) SpecType(t string) *Builder {
	b.err.SpecType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// WrongTag creates a tag mismatch decode error
func WrongTag(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindWrongTag,
		Path:     path,
		SpecType: want,
		Detail:   fmt.Sprintf("value tagged %s where %s expected", got, want),
	}
}

// NotAnObject is returned when element access is attempted on an inline value
func NotAnObject(phase Phase, path []string, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotAnObject,
		Path:   path,
		Detail: fmt.Sprintf("value tagged %s has no object elements", tag),
	}
}

// MissingField creates an error for an object with too few elements
func MissingField(phase Phase, path []string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingField,
		Path:   path,
		Detail: fmt.Sprintf("object has %d elements, %d declared members required", got, want),
	}
}

// UnknownVariant creates an error for a discriminant matching no declared variant
func UnknownVariant(phase Phase, path []string, disc any, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnknownVariant,
		Path:     path,
		SpecType: typeName,
		Detail:   fmt.Sprintf("discriminant %v matches no declared variant", disc),
		Value:    disc,
	}
}

// OutOfRange creates a numeric range error
func OutOfRange(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOutOfRange,
		Path:     path,
		SpecType: targetType,
		Detail:   fmt.Sprintf("value %v out of range for %s", value, targetType),
		Value:    value,
	}
}

// TypeMismatch creates a Go/spec type mismatch error
func TypeMismatch(phase Phase, path []string, goType, specType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		SpecType: specType,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidHandle creates an error for an object handle outside its validity window
func InvalidHandle(phase Phase, handle uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf("object handle %#x is not valid in this invocation scope", handle),
		Value:  handle,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// UnresolvedReference creates a specification error naming the offending declaration
func UnresolvedReference(entry, ref string) *Error {
	return &Error{
		Phase:  PhaseSpec,
		Kind:   KindUnresolvedReference,
		Path:   []string{entry},
		Detail: fmt.Sprintf("entry %q references undeclared type %q", entry, ref),
	}
}

// DuplicateName creates a specification error for colliding entry names
func DuplicateName(name string) *Error {
	return &Error{
		Phase:  PhaseSpec,
		Kind:   KindDuplicateName,
		Path:   []string{name},
		Detail: fmt.Sprintf("entry %q declared more than once", name),
	}
}

// SignatureConflict creates a specification error for a function declared twice
// with differing signatures
func SignatureConflict(name string) *Error {
	return &Error{
		Phase:  PhaseSpec,
		Kind:   KindSignatureConflict,
		Path:   []string{name},
		Detail: fmt.Sprintf("function %q declared more than once with differing signatures", name),
	}
}

// RecursiveType creates a specification error for unindirected self-containment
func RecursiveType(cycle []string) *Error {
	return &Error{
		Phase:  PhaseSpec,
		Kind:   KindRecursiveType,
		Path:   cycle,
		Detail: fmt.Sprintf("type cycle %s has no indirection point and would encode to unbounded size", strings.Join(cycle, " -> ")),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a contract binary loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// InvocationError is surfaced by generated client stubs. It wraps either a
// host-reported failure (the callee rejected the call) or a conversion error
// from decoding the return value (the binding cannot decode what the callee
// returned, which indicates a specification mismatch rather than a callee
// bug). The two are never conflated: exactly one of Host and Decode is set.
type InvocationError struct {
	Function string
	Host     error
	Decode   error
}

func (e *InvocationError) Error() string {
	if e.Host != nil {
		return fmt.Sprintf("invoke %s: host rejected call: %v", e.Function, e.Host)
	}
	return fmt.Sprintf("invoke %s: cannot decode return value: %v", e.Function, e.Decode)
}

// Unwrap returns whichever underlying error is set
func (e *InvocationError) Unwrap() error {
	if e.Host != nil {
		return e.Host
	}
	return e.Decode
}

// IsDecodeFailure reports whether the failure came from decoding the return
// value rather than from the callee rejecting the call
func (e *InvocationError) IsDecodeFailure() bool {
	return e.Decode != nil
}

// InvokeHostFailure wraps a host-reported invocation failure
func InvokeHostFailure(function string, cause error) *InvocationError {
	return &InvocationError{Function: function, Host: cause}
}

// InvokeDecodeFailure wraps a return-value decode failure
func InvokeDecodeFailure(function string, cause error) *InvocationError {
	return &InvocationError{Function: function, Decode: cause}
}
