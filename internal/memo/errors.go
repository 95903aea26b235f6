package memo

import (
	"errors"
	"fmt"
)

// Reason classifies an expected validation rejection. Rejections are
// adversarial noise on an open feed: logged, counted, never retried.
// Anything that is not a Rejection is an unexpected failure.
type Reason string

const (
	ReasonFormat             Reason = "format"
	ReasonInvalidNumber      Reason = "invalid_number"
	ReasonBoundViolation     Reason = "bound_violation"
	ReasonImpersonation      Reason = "impersonation"
	ReasonOnlyOperator       Reason = "only_operator"
	ReasonNodeNotFound       Reason = "node_not_found"
	ReasonOperatorMismatch   Reason = "operator_mismatch"
	ReasonNotListed          Reason = "not_listed"
	ReasonInsufficientAmount Reason = "insufficient_amount"
	ReasonUnknownCode        Reason = "unknown_code"
)

// Rejection is a validation rejection with its classified reason.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Rejectf builds a Rejection with a formatted message.
func Rejectf(reason Reason, format string, args ...interface{}) *Rejection {
	return &Rejection{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// AsRejection unwraps err into a Rejection, nil if it is not one.
func AsRejection(err error) *Rejection {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection
	}
	return nil
}
