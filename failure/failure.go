package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Stage indicates which step of a run failed
type Stage string

const (
	StageConfig   Stage = "config"   // snapshot table loading
	StageTrace    Stage = "trace"    // sample classification
	StageFinalize Stage = "finalize" // registry consistency and coverage
	StageGenerate Stage = "generate" // target source rendering
	StageWrite    Stage = "write"    // output file
	StageEncode   Stage = "encode"   // node to bytes
	StageDecode   Stage = "decode"   // bytes to node
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch     Kind = "type_mismatch"
	KindUnknownType      Kind = "unknown_type"
	KindInvalidVariant   Kind = "invalid_variant"
	KindFieldMissing     Kind = "field_missing"
	KindFieldUnknown     Kind = "field_unknown"
	KindOverflow         Kind = "overflow"
	KindContradiction    Kind = "contradiction"
	KindIncomplete       Kind = "incomplete"
	KindUnsupported      Kind = "unsupported"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
	KindIO               Kind = "io"
	KindInvalidConfig    Kind = "invalid_config"
	KindTrailingBytes    Kind = "trailing_bytes"
	KindDepthExceeded    Kind = "depth_exceeded"
	KindUnexpectedEOF    Kind = "unexpected_eof"
	KindNonCanonical     Kind = "non_canonical"
	KindDuplicateDeclare Kind = "duplicate_declaration"
)

// Error is the structured error type
type Error struct {
	Cause  error
	Stage  Stage
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(" in ")
		b.WriteString(e.Type)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
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
		return e.Stage == t.Stage && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(stage Stage, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Stage: stage,
			Kind:  kind,
		},
	}
}

// Type sets the declared type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = append([]string(nil), path...)
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
	err := b.err
	return &err
}

// Sentinel returns a bare error for matching with errors.Is
func Sentinel(stage Stage, kind Kind) *Error {
	return &Error{Stage: stage, Kind: kind}
}

// Wrap tags err with a stage. An existing *Error keeps its own stage and kind.
func Wrap(stage Stage, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Stage: stage, Kind: kind, Cause: err}
}

// StageOf returns the stage of the first *Error in the chain, including the
// first error of an aggregated multierror
func StageOf(err error) (Stage, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage, true
	}
	return "", false
}
