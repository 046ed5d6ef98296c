package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeAck     = "ACK"

	TypeSendTradeRequest    = "SEND_TRADE_REQUEST"
	TypeRespondTradeRequest = "RESPOND_TRADE_REQUEST"
	TypeUpdateOffer         = "UPDATE_OFFER"
	TypeConfirmOffer        = "CONFIRM_OFFER"
	TypeCancelTrade         = "CANCEL_TRADE"

	TypeTradeNotification = "TRADE_NOTIFICATION"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// IsClientAct reports whether the message type is one of the closed set of
// client trade calls the server dispatches.
func IsClientAct(msgType string) bool {
	switch msgType {
	case TypeSendTradeRequest, TypeRespondTradeRequest, TypeUpdateOffer, TypeConfirmOffer, TypeCancelTrade:
		return true
	}
	return false
}
