package service

import (
	"github.com/google/uuid"

	"github.com/ivolkov/secrethold/internal/model"
)

// Decision is the access gate outcome for a request's session state.
type Decision int

const (
	Anonymous Decision = iota
	Authenticated
)

// Check is the access gate: a pure function of resolved session state with no
// side effects. Protected operations call it before proceeding and must not
// bypass it.
func Check(identity *model.SessionIdentity) Decision {
	if identity == nil || identity.AccountID == uuid.Nil {
		return Anonymous
	}
	return Authenticated
}
