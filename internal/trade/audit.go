package trade

// AuditEntry records a terminal session outcome for the durable trade log.
type AuditEntry struct {
	TimeUnix  int64    `json:"time_unix"`
	SessionID string   `json:"session_id"`
	Outcome   string   `json:"outcome"` // COMPLETED | CANCELLED | FAILED
	Reason    string   `json:"reason,omitempty"`
	ActorA    string   `json:"actor_a"`
	ActorB    string   `json:"actor_b"`
	CoinsA    int64    `json:"coins_a"`
	ItemsA    []string `json:"items_a,omitempty"`
	CoinsB    int64    `json:"coins_b"`
	ItemsB    []string `json:"items_b,omitempty"`
	ValueA    int64    `json:"value_a"`
	ValueB    int64    `json:"value_b"`
	Balanced  bool     `json:"balanced"`
}

// AuditLogger is implemented in internal/persistence/auditlog.
type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}
