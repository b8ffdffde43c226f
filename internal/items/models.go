package items

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the lifecycle state of a reported item
type ItemStatus string

const (
	StatusLost      ItemStatus = "LOST"
	StatusFound     ItemStatus = "FOUND"
	StatusClaimed   ItemStatus = "CLAIMED"
	StatusRecovered ItemStatus = "RECOVERED"
)

// ItemCategory classifies reported items
type ItemCategory string

const (
	CategoryElectronics ItemCategory = "ELECTRONICS"
	CategoryAccessories ItemCategory = "ACCESSORIES"
	CategoryBooks       ItemCategory = "BOOKS"
	CategoryClothing    ItemCategory = "CLOTHING"
	CategoryDocuments   ItemCategory = "DOCUMENTS"
	CategoryKeys        ItemCategory = "KEYS"
	CategoryBags        ItemCategory = "BAGS"
	CategoryOther       ItemCategory = "OTHER"
)

// Categories lists every valid item category
var Categories = []ItemCategory{
	CategoryElectronics,
	CategoryAccessories,
	CategoryBooks,
	CategoryClothing,
	CategoryDocuments,
	CategoryKeys,
	CategoryBags,
	CategoryOther,
}

// Item is a reported lost or found object. Status is a stored derived
// value: after creation it is only ever written by the claim lifecycle
// (or admin handover/delete), so it cannot drift from the claims that
// justify it. StatusBeforeClaim remembers the origin status while the
// item is CLAIMED so a rejection can restore it exactly.
type Item struct {
	ID                uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title             string       `gorm:"not null" json:"title"`
	Description       string       `json:"description"`
	Category          ItemCategory `gorm:"not null" json:"category"`
	Status            ItemStatus   `gorm:"not null;index" json:"status"`
	StatusBeforeClaim *ItemStatus  `json:"-"`
	Location          string       `json:"location"`
	ReportedAt        time.Time    `gorm:"not null" json:"reported_at"`
	CreatedByID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"created_by_id"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	Images            []ItemImage  `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"images"`
}

// ItemImage is a registered photo of an item. The first image is the
// canonical one used for claim verification.
type ItemImage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c ItemCategory) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Claimable reports whether the item can accept a new claim.
func (i *Item) Claimable() bool {
	return i.Status == StatusLost || i.Status == StatusFound
}
