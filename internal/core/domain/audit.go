package domain

import "time"

// AuditEntry is one record of an operator/administrative action. It is
// separate from the transaction log: the transaction log is the durable
// trail of balance changes, the audit log is who did what.
type AuditEntry struct {
	LogID     int64     `json:"logID"` // Assigned by the store on insert
	UserID    string    `json:"userID"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
