package claims

import (
	"time"

	"github.com/google/uuid"

	"findit/campus-portal/lostfound-backend/internal/items"
)

// ClaimStatus is the lifecycle state of a claim
type ClaimStatus string

const (
	StatusPending  ClaimStatus = "PENDING"
	StatusApproved ClaimStatus = "APPROVED"
	StatusRejected ClaimStatus = "REJECTED"
)

// ProofType classifies one piece of claim evidence
type ProofType string

const (
	ProofDescription     ProofType = "DESCRIPTION"
	ProofSerialNumber    ProofType = "SERIAL_NUMBER"
	ProofUniqueFeature   ProofType = "UNIQUE_FEATURE"
	ProofPurchaseReceipt ProofType = "PURCHASE_RECEIPT"
	ProofPhoto           ProofType = "PHOTO"
	ProofOther           ProofType = "OTHER"
	// Pipeline-internal types produced by the mobile clients
	ProofImage   ProofType = "IMAGE"
	ProofAnswers ProofType = "ANSWERS"
)

var proofTypes = map[ProofType]struct{}{
	ProofDescription:     {},
	ProofSerialNumber:    {},
	ProofUniqueFeature:   {},
	ProofPurchaseReceipt: {},
	ProofPhoto:           {},
	ProofOther:           {},
	ProofImage:           {},
	ProofAnswers:         {},
}

// ValidProofType reports whether t is a known proof type.
func ValidProofType(t ProofType) bool {
	_, ok := proofTypes[t]
	return ok
}

// supersededNote is the fixed rationale written on sibling claims that
// lose the cascade when another claim is approved.
const supersededNote = "Another claim was approved"

// Claim is a user's assertion of ownership over an item. A (item,
// claimant) pair can claim at most once, in any status; the uniqueness
// is backed by a constraint and enforced again by the lifecycle.
// AdminComment holds only the adjudicator's note; the automatic
// verification result lives in its own two columns.
type Claim struct {
	ID                uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID            uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_claims_item_claimant;index" json:"item_id"`
	ClaimantID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_claims_item_claimant;index" json:"claimant_id"`
	Status            ClaimStatus `gorm:"not null;index" json:"status"`
	AdminComment      string      `json:"admin_comment"`
	VerificationScore int         `json:"verification_score"`
	VerificationNote  string      `json:"verification_note"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	Proofs            []Proof     `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"proofs"`
	Item              *items.Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"item,omitempty"`
}

// Proof is one piece of evidence attached to a claim. Proofs are created
// atomically with their claim and never mutated afterwards.
type Proof struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClaimID   uuid.UUID `gorm:"type:uuid;not null;index" json:"claim_id"`
	Type      ProofType `gorm:"not null" json:"type"`
	Value     string    `gorm:"not null" json:"value"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the claim blocks new claims on its item.
func (c *Claim) Active() bool {
	return c.Status == StatusPending || c.Status == StatusApproved
}
