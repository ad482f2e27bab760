package temporal

import (
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
)

var (
	// ErrWorkflowNotFound indicates the target workflow does not exist.
	ErrWorkflowNotFound = errors.New("temporal: workflow not found")
	// ErrWorkflowCompleted indicates the target workflow has already finished.
	ErrWorkflowCompleted = errors.New("temporal: workflow already completed")
)

// mapSignalError translates Temporal service errors returned by signal and
// query calls into this package's sentinels. Other errors pass through.
func mapSignalError(err error) error {
	if err == nil {
		return nil
	}
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrWorkflowNotFound, err)
	}
	var precondition *serviceerror.FailedPrecondition
	if errors.As(err, &precondition) {
		return fmt.Errorf("%w: %v", ErrWorkflowCompleted, err)
	}
	return err
}
