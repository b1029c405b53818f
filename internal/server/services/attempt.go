package services

import (
	"fmt"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/google/uuid"
)

// AttemptState is a step of one sign-in attempt.
type AttemptState string

const (
	StateIdle                   AttemptState = "idle"
	StateAwaitingProviderChoice AttemptState = "awaiting_provider_choice"
	StateCredentialFlow         AttemptState = "credential_flow"
	StateFederatedFlow          AttemptState = "federated_flow"
	StateIssued                 AttemptState = "issued"
	StateRejected               AttemptState = "rejected"
)

var transitions = map[AttemptState][]AttemptState{
	StateIdle:                   {StateAwaitingProviderChoice},
	StateAwaitingProviderChoice: {StateCredentialFlow, StateFederatedFlow},
	StateCredentialFlow:         {StateIssued, StateRejected},
	StateFederatedFlow:          {StateIssued, StateRejected},
}

// ErrIllegalTransition means the gateway tried to skip or repeat a step.
var ErrIllegalTransition = fmt.Errorf("%w: illegal sign-in transition", common.ErrorInternal)

// Attempt tracks a single sign-in from Idle to Issued or Rejected. It is
// owned by one request and is not safe for concurrent use.
type Attempt struct {
	ID      string
	state   AttemptState
	history []AttemptState
}

func newAttempt() *Attempt {
	return &Attempt{ID: uuid.NewString(), state: StateIdle, history: []AttemptState{StateIdle}}
}

func (a *Attempt) State() AttemptState { return a.state }

// History returns every state the attempt has been in, oldest first.
func (a *Attempt) History() []AttemptState {
	return append([]AttemptState(nil), a.history...)
}

// Terminal reports whether the attempt reached Issued or Rejected.
func (a *Attempt) Terminal() bool {
	return a.state == StateIssued || a.state == StateRejected
}

func (a *Attempt) transition(to AttemptState) error {
	for _, allowed := range transitions[a.state] {
		if allowed == to {
			a.state = to
			a.history = append(a.history, to)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, a.state, to)
}
