package progress

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrAccessDenied = errors.New("previous week must be completed before accessing this week")

// AccessDeniedError is returned when a learner opens a week whose predecessor is not completed.
type AccessDeniedError struct {
	RequiredWeek int
}

func (err *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s (week %d)", ErrAccessDenied, err.RequiredWeek)
}

func (err *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// CheckAccess applies the unlock policy: week 1 is always open, admins bypass every gate
// and any other week needs the previous week completed. prev is nil when the learner has
// no record of the previous week.
func CheckAccess(week int, learner Learner, prev *Record) error {
	if week <= 1 || learner.IsAdmin {
		return nil
	}
	if prev != nil && prev.IsCompleted() {
		return nil
	}
	return &AccessDeniedError{RequiredWeek: week - 1}
}

// WeekStatus is the status shown for a week in a listing. rec and prev may be nil.
// A stored record always wins.
func WeekStatus(week int, learner Learner, rec, prev *Record) Status {
	switch {
	case rec != nil:
		return rec.Status
	case CheckAccess(week, learner, prev) == nil:
		return StatusUnlocked
	default:
		return StatusLocked
	}
}
