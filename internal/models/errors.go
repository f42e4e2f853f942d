package models

import "fmt"

// ErrorKind classifies a run error. Recoverable kinds are appended to the
// state's error list and execution continues; fatal kinds stop the run.
type ErrorKind string

const (
	ErrAgentInvocation    ErrorKind = "agent_invocation"
	ErrTimeout            ErrorKind = "timeout"
	ErrSignalParse        ErrorKind = "signal_parse"
	ErrMemory             ErrorKind = "memory"
	ErrConfiguration      ErrorKind = "configuration"
	ErrExecutionExhausted ErrorKind = "execution_exhausted"
	ErrStateCorruption    ErrorKind = "state_corruption"
)

// Fatal reports whether an error of this kind aborts the run.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrConfiguration, ErrExecutionExhausted, ErrStateCorruption:
		return true
	default:
		return false
	}
}

// RunError records one failure, recoverable or fatal, with the stage it
// occurred in.
type RunError struct {
	Stage  string    `json:"stage"`
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (e RunError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Detail)
}

// NewRunError builds a RunError with a formatted detail message.
func NewRunError(stage string, kind ErrorKind, format string, args ...any) RunError {
	return RunError{Stage: stage, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
