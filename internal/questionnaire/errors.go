package questionnaire

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete is returned when a transition is attempted without a required
	// rating or selection. The state is left unchanged and the user can retry.
	ErrIncomplete = errors.New("incomplete input")

	// ErrInvariant is returned when the state is inconsistent, for example a
	// submission without a valence score. The session should be restarted.
	ErrInvariant = errors.New("questionnaire state is inconsistent")

	// ErrWrongStage is returned when an event does not belong to the current stage.
	ErrWrongStage = errors.New("event not accepted in current stage")

	// ErrStaleItem is returned when a rating names an item other than the one
	// under the cursor. It wraps ErrWrongStage.
	ErrStaleItem = fmt.Errorf("%w: rating is for another item", ErrWrongStage)

	// ErrInvalidValue is returned for ratings or scale values outside their domain.
	ErrInvalidValue = errors.New("value out of range")
)
