package usecase

import (
	"errors"
	"fmt"
)

// ErrEmptyTopic is returned when a topic derives an empty identifier.
var ErrEmptyTopic = errors.New("topic has no alphanumeric characters")

// StageError tells callers which pipeline stage aborted a run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StageError
	if errors.As(err, &existing) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
