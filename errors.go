package digraph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below matches one of them with
// errors.Is, so callers can branch on the kind of failure without
// inspecting its details.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("digraph: record not found")

	// ErrIncompleteEdge is returned by AddEdge for edges without a next state.
	ErrIncompleteEdge = errors.New("digraph: edge is incomplete, next state is required")

	// ErrTypeMismatch is returned by AddEdge for edges of another graph.
	ErrTypeMismatch = errors.New("digraph: invalid edge type")

	// ErrAlreadyExists is returned by AddEdge for edges that were persisted before.
	ErrAlreadyExists = errors.New("digraph: only new edges can be added")

	// ErrDuplicateEdge is returned by AddEdge when an equal edge is already attached.
	ErrDuplicateEdge = errors.New("digraph: same edge already exists")

	// ErrNotBound is returned by operations that require a manager bound to
	// a source instance.
	ErrNotBound = errors.New("digraph: manager is not bound to an instance")

	// ErrUnbound is an alias of ErrNotBound.
	ErrUnbound = ErrNotBound

	// ErrDuplicateRegistration is returned when a source type is registered twice.
	ErrDuplicateRegistration = errors.New("digraph: source type already registered")

	// ErrNotRegistered is returned when looking up a graph that was never registered.
	ErrNotRegistered = errors.New("digraph: source type not registered")

	// ErrEdgeNotFound is returned by RemoveEdge for edges that are not
	// attached to the bound graph node.
	ErrEdgeNotFound = errors.New("digraph: edge not found")

	// ErrMaxDepth is returned when a traversal exceeds the configured depth.
	ErrMaxDepth = errors.New("digraph: maximum traversal depth exceeded")
)

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("digraph: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("digraph: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the record type.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given record type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// TypeMismatchError is returned when an edge of one graph is added to another.
type TypeMismatchError struct {
	Want string // Edge type of the manager
	Got  string // Edge type of the candidate
}

// Error returns the error string.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("digraph: got invalid edge type %s, expected %s", e.Got, e.Want)
}

// Is reports whether the target error matches ErrTypeMismatch.
func (e *TypeMismatchError) Is(err error) bool {
	return err == ErrTypeMismatch
}

// AlreadyExistsError is returned when a persisted edge is added again.
type AlreadyExistsError struct {
	Type string
	ID   int64
}

// Error returns the error string.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("digraph: only new edges can be added, %s already exists (id=%d)", e.Type, e.ID)
}

// Is reports whether the target error matches ErrAlreadyExists.
func (e *AlreadyExistsError) Is(err error) bool {
	return err == ErrAlreadyExists
}

// DuplicateEdgeError is returned when an equal edge is already attached
// to the graph node.
type DuplicateEdgeError struct {
	NextState int64
	Attr      *int64
	Existing  int64 // ID of the attached edge
}

// Error returns the error string.
func (e *DuplicateEdgeError) Error() string {
	attr := "none"
	if e.Attr != nil {
		attr = fmt.Sprint(*e.Attr)
	}
	return fmt.Sprintf("digraph: unable to create edge, same edge already exists (id=%d, next_state=%d, attr=%s)", e.Existing, e.NextState, attr)
}

// Is reports whether the target error matches ErrDuplicateEdge.
func (e *DuplicateEdgeError) Is(err error) bool {
	return err == ErrDuplicateEdge
}

// DuplicateRegistrationError is returned when a source type is registered twice.
type DuplicateRegistrationError struct {
	Type string
}

// Error returns the error string.
func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("digraph: source type %s already registered", e.Type)
}

// Is reports whether the target error matches ErrDuplicateRegistration.
func (e *DuplicateRegistrationError) Is(err error) bool {
	return err == ErrDuplicateRegistration
}

// DepthError is returned when a traversal walks further than allowed.
type DepthError struct {
	Max  int   // Configured limit
	Node int64 // Source ID the walk could not expand
}

// Error returns the error string.
func (e *DepthError) Error() string {
	return fmt.Sprintf("digraph: maximum traversal depth %d exceeded at %d", e.Max, e.Node)
}

// Is reports whether the target error matches ErrMaxDepth.
func (e *DepthError) Is(err error) bool {
	return err == ErrMaxDepth
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "digraph: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("digraph: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Record type being queried
	Op     string // Operation (e.g., "edges", "node", "traverse")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("digraph: querying %s (%s): %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("digraph: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps a mutation error with additional context.
type MutationError struct {
	Entity string // Record type being mutated
	Op     string // Operation (e.g., "create", "delete")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("digraph: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// PrivacyError represents a privacy policy violation.
type PrivacyError struct {
	Entity string // Record type
	Op     string // Mutation operation
	Err    error  // Decision returned by the policy
}

// Error returns the error string.
func (e *PrivacyError) Error() string {
	return fmt.Sprintf("digraph: privacy denied %s on %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the policy decision.
func (e *PrivacyError) Unwrap() error {
	return e.Err
}

// IsPrivacyError returns true if the error is a PrivacyError.
func IsPrivacyError(err error) bool {
	if err == nil {
		return false
	}
	var e *PrivacyError
	return errors.As(err, &e)
}
