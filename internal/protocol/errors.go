package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Request/invitation layer.
	ErrInvalidRequest     = "E_INVALID_REQUEST"
	ErrTargetUnavailable  = "E_TARGET_UNAVAILABLE"
	ErrAlreadyPending     = "E_ALREADY_PENDING"
	ErrAlreadyNegotiating = "E_ALREADY_NEGOTIATING"
	ErrNoSuchRequest      = "E_NO_SUCH_REQUEST"

	// Session/offer layer.
	ErrNotInSession = "E_NOT_IN_SESSION"
	ErrInvalidOffer = "E_INVALID_OFFER"
	ErrRateLimit    = "E_RATE_LIMIT"

	// Execution layer.
	ErrInsufficientFunds = "E_INSUFFICIENT_FUNDS"
	ErrOwnership         = "E_OWNERSHIP"
	ErrExecutionFailed   = "E_EXECUTION_FAILED"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:    {},
	ErrInvalidRequest:     {},
	ErrTargetUnavailable:  {},
	ErrAlreadyPending:     {},
	ErrAlreadyNegotiating: {},
	ErrNoSuchRequest:      {},
	ErrNotInSession:       {},
	ErrInvalidOffer:       {},
	ErrRateLimit:          {},
	ErrInsufficientFunds:  {},
	ErrOwnership:          {},
	ErrExecutionFailed:    {},
	ErrInternal:           {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
