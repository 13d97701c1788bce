package inspection

import (
	"errors"

	"qctrack/internal/errs"
)

var (
	ErrStationRequired   = errs.WithKind(errors.New("station is required"), errs.KindValidation)
	ErrInvalidStation    = errs.WithKind(errors.New("invalid station"), errs.KindValidation)
	ErrUnknownStation    = errs.WithKind(errors.New("unknown station"), errs.KindValidation)
	ErrInvalidWorkWeek   = errs.WithKind(errors.New("work week must be an integer between 1 and 53"), errs.KindValidation)
	ErrLotNumberRequired = errs.WithKind(errors.New("lot number is required"), errs.KindValidation)
	ErrInvalidJudgment   = errs.WithKind(errors.New("judgment must be ACCEPT or REJECT"), errs.KindValidation)
	ErrImmutableField    = errs.WithKind(errors.New("field cannot change after creation"), errs.KindValidation)
	ErrSameStation       = errs.WithKind(errors.New("derived station must differ from source station"), errs.KindValidation)
	ErrInvalidQuantity   = errs.WithKind(errors.New("quantity must not be negative"), errs.KindValidation)

	ErrCounterExhausted = errs.WithKind(errors.New("inspection number counter exhausted for prefix"), errs.KindConflict)
	ErrStoreUnavailable = errs.WithKind(errors.New("inspection store unavailable"), errs.KindStore)
)
