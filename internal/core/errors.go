package core

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ParseFailure ErrorKind = iota
	TransformFailure
	RuntimeFailure
	AddressingSkip
	ResolutionFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ParseFailure:
		return "parse"
	case TransformFailure:
		return "transform"
	case RuntimeFailure:
		return "runtime"
	case AddressingSkip:
		return "addressing"
	case ResolutionFailure:
		return "resolution"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type RenderStage string

const (
	StageIdle          RenderStage = "idle"
	StagePreprocessing RenderStage = "preprocessing"
	StageTransforming  RenderStage = "transforming"
	StageEvaluating    RenderStage = "evaluating"
	StageRendered      RenderStage = "rendered"
	StageFailed        RenderStage = "failed"
	StageFallback      RenderStage = "fallback-rendered"
)

var (
	ErrNoPage          = errors.New("document has no pages")
	ErrComponentAbsent = errors.New("component not found")
)

// RenderError describes why a component could not be rendered from source.
// Line and Col are 1-based and zero when unknown.
type RenderError struct {
	Kind    ErrorKind
	Stage   RenderStage
	Message string
	Detail  string
	Line    int
	Col     int
	Err     error
}

func (e *RenderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s failure at %d:%d: %s", e.Kind, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("%s failure: %s", e.Kind, e.Message)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsKind reports whether err carries a RenderError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Kind == kind
}
