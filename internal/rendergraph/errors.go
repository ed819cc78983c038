package rendergraph

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrCycleDetected matches any ValidationError caused by a dependency cycle.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrMissingDependency matches any ValidationError caused by a dependency
	// on a pass that is not part of the set.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrNameMismatch matches any ValidationError caused by a pass stored
	// under a key other than its own name.
	ErrNameMismatch = errors.New("pass name mismatch")
)

// ValidationKind says why a pass set could not be ordered
type ValidationKind int

const (
	CycleDetected ValidationKind = iota
	MissingDependency
	NameMismatch
)

func (k ValidationKind) String() string {
	switch k {
	case CycleDetected:
		return "CycleDetected"
	case MissingDependency:
		return "MissingDependency"
	case NameMismatch:
		return "NameMismatch"
	}
	return fmt.Sprintf("ValidationKind(%d)", int(k))
}

// ValidationError is returned by Compile when the pass set is invalid
type ValidationError struct {
	Kind ValidationKind

	// Pass and Dependency are set for MissingDependency: Pass declared a
	// dependency on Dependency, which does not exist.
	Pass       string
	Dependency string

	// Name is set for NameMismatch: the pass stored under key Pass calls
	// itself Name.
	Name string

	// Unordered is set for CycleDetected: every pass that could not be
	// placed, in declaration order. At least one of them is on the cycle.
	Unordered []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingDependency:
		return fmt.Sprintf("render graph: pass %q depends on %q, which does not exist", e.Pass, e.Dependency)
	case CycleDetected:
		return fmt.Sprintf("render graph: cycle detected among passes [%s]", strings.Join(e.Unordered, ", "))
	case NameMismatch:
		return fmt.Sprintf("render graph: pass stored as %q is named %q", e.Pass, e.Name)
	}
	return "render graph: " + e.Kind.String()
}

// Unwrap lets errors.Is match the sentinel for the error's kind
func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case MissingDependency:
		return ErrMissingDependency
	case CycleDetected:
		return ErrCycleDetected
	case NameMismatch:
		return ErrNameMismatch
	}
	return nil
}
