package dto

import (
	"time"

	"github.com/knbsoft/knb_backend/internal/core/domain"
)

// AuditEntryResponse is one operator action record.
type AuditEntryResponse struct {
	LogID     int64     `json:"logID"`
	UserID    string    `json:"userID"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListAuditParams defines query parameters for listing audit entries.
type ListAuditParams struct {
	Limit int `form:"limit,default=50"`
}

// ListAuditResponse wraps a list of audit entries.
type ListAuditResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
}

// ToListAuditResponse converts domain audit entries to the list DTO.
func ToListAuditResponse(entries []domain.AuditEntry) ListAuditResponse {
	res := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = AuditEntryResponse{
			LogID:     e.LogID,
			UserID:    e.UserID,
			Action:    e.Action,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
	}
	return ListAuditResponse{Entries: res}
}
