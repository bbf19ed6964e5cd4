package client

// State is a step of the per-request state machine:
//
//	Init -> Sending -> Succeeded | FailedNonExpiry | FailedExpiry
//	FailedExpiry -> RefreshSending -> RefreshSucceeded -> RetrySending -> Succeeded | Failed
//	                               -> RefreshFailed -> SessionDestroyed
//	                               -> Failed (caller cancelled, or the session changed meanwhile)
type State string

const (
	StateInit             State = "init"
	StateSending          State = "sending"
	StateSucceeded        State = "succeeded"
	StateFailedNonExpiry  State = "failed_non_expiry"
	StateFailedExpiry     State = "failed_expiry"
	StateRefreshSending   State = "refresh_sending"
	StateRefreshSucceeded State = "refresh_succeeded"
	StateRefreshFailed    State = "refresh_failed"
	StateRetrySending     State = "retry_sending"
	StateFailed           State = "failed"
	StateSessionDestroyed State = "session_destroyed"
)

// Terminal reports whether no further transition follows s
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailedNonExpiry, StateFailed, StateSessionDestroyed:
		return true
	}
	return false
}

// TraceFunc observes every state transition of a request
type TraceFunc func(requestID string, state State)
