package trade

import (
	"errors"
	"fmt"

	"tradehall.gg/internal/protocol"
)

// Error is the typed failure returned by coordinator, gateway and engine
// operations. Kind is one of the protocol E_* codes so transports can ACK
// without translation.
type Error struct {
	Kind string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind
	}
	return e.Kind + ": " + e.Msg
}

func errf(kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf maps an error to its protocol code. Non-trade errors surface as
// E_INTERNAL rather than leaking internals to clients.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return protocol.ErrInternal
}
