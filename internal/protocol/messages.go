package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ActorName       string `json:"actor_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ActorID         string `json:"actor_id"`
	ServerTimeUnix  int64  `json:"server_time_unix"`
}

// ACK (server -> client): per-call result. AckFor echoes the client's id.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// Client trade calls. Every call carries a client-chosen correlation id.

type SendTradeRequestMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Target          string `json:"target"`
}

type RespondTradeRequestMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	From            string `json:"from"`
	Accept          bool   `json:"accept"`
}

type UpdateOfferMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	ID              string   `json:"id"`
	Coins           int64    `json:"coins"`
	ItemRefs        []string `json:"item_refs"`
}

type ConfirmOfferMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
}

type CancelTradeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
}

// Notification kinds (server -> client push).
const (
	NotifyRequest       = "request"
	NotifyStarted       = "started"
	NotifyOfferUpdate   = "offer_update"
	NotifyConfirmStatus = "confirm_status"
	NotifyCompleted     = "completed"
	NotifyCancelled     = "cancelled"
	NotifyFailed        = "failed"
)

// TRADE_NOTIFICATION (server -> client push). Payload fields vary by kind.
type TradeNotificationMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Kind            string `json:"kind"`

	// request
	From          string `json:"from,omitempty"`
	ExpiresAtUnix int64  `json:"expires_at_unix,omitempty"`

	// session-scoped kinds
	SessionID string `json:"session_id,omitempty"`
	With      string `json:"with,omitempty"`
	By        string `json:"by,omitempty"`

	// offer_update / confirm_status
	Offers   []OfferView   `json:"offers,omitempty"`
	Confirms []ConfirmView `json:"confirms,omitempty"`
	Fairness *FairnessView `json:"fairness,omitempty"`

	// completed
	Gained *OfferView `json:"gained,omitempty"`
	Gave   *OfferView `json:"gave,omitempty"`

	// failed
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type OfferView struct {
	Actor    string   `json:"actor,omitempty"`
	Coins    int64    `json:"coins"`
	ItemRefs []string `json:"item_refs,omitempty"`
}

type ConfirmView struct {
	Actor     string `json:"actor"`
	Confirmed bool   `json:"confirmed"`
}

// FairnessView is advisory telemetry only; it never gates execution.
type FairnessView struct {
	Values   map[string]int64 `json:"values"`
	Balanced bool             `json:"balanced"`
}
