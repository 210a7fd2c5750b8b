package visit

import "errors"

var (
	ErrVisitNotFound     = errors.New("visit not found")
	ErrAlreadyDischarged = errors.New("visit is already discharged")
	ErrActiveVisitExists = errors.New("patient already has an active visit")
	ErrInvalidShiftType  = errors.New("invalid shift type for the selected shift pattern")
)
