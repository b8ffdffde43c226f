package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Action tags recorded in the audit trail
const (
	ActionClaimApproved = "CLAIM_APPROVED"
	ActionClaimRejected = "CLAIM_REJECTED"
	ActionItemModerated = "ITEM_MODERATED"
	ActionItemDeleted   = "ITEM_DELETED"
	ActionItemHandover  = "ITEM_HANDOVER"
	ActionUserBanned    = "USER_BANNED"
)

// AuditLog is an append-only record of an administrative or automatic
// decision. Rows are never updated or deleted.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action    string            `gorm:"not null;index" json:"action"`
	Entity    string            `gorm:"not null" json:"entity"`
	EntityID  string            `gorm:"not null" json:"entity_id"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}
