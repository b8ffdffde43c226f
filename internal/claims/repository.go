package claims

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"findit/campus-portal/lostfound-backend/internal/items"
	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	GetByItemAndClaimant(ctx context.Context, itemID, claimantID uuid.UUID) (*Claim, error)
	HasActiveClaim(ctx context.Context, itemID uuid.UUID) (bool, error)
	ListByClaimant(ctx context.Context, claimantID uuid.UUID) ([]Claim, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]Claim, error)
	List(ctx context.Context, status *ClaimStatus, page, limit int) ([]Claim, int64, error)

	// CreateWithProofs persists a new PENDING claim and flips the item to
	// CLAIMED in one transaction, re-checking the claimability and
	// one-active-claim invariants under a row lock on the item.
	CreateWithProofs(ctx context.Context, claim *Claim) error

	// Approve marks the claim APPROVED and cascade-rejects every other
	// PENDING claim on the same item, atomically.
	Approve(ctx context.Context, claimID uuid.UUID, comment string) (*Claim, error)

	// Reject marks the claim REJECTED; when no PENDING claims remain on
	// the item it restores the item's pre-claim status.
	Reject(ctx context.Context, claimID uuid.UUID, reason string) (*Claim, error)

	MarkItemRecovered(ctx context.Context, itemID uuid.UUID) error

	CountApprovedForItem(ctx context.Context, itemID uuid.UUID) (int64, error)
	CountApprovedAgainstReporter(ctx context.Context, claimantID, reporterID uuid.UUID, since time.Time) (int64, error)

	// SnapshotItemStates returns every item's stored status together with
	// its pending/approved claim counts, for the consistency sweep.
	SnapshotItemStates(ctx context.Context) ([]ItemState, error)
}

// ItemState pairs an item's cached status with the claim counts that are
// supposed to justify it.
type ItemState struct {
	ItemID   uuid.UUID         `gorm:"column:item_id"`
	Status   items.ItemStatus  `gorm:"column:status"`
	Pending  int64             `gorm:"column:pending"`
	Approved int64             `gorm:"column:approved"`
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	var claim Claim
	err := r.db.WithContext(ctx).
		Preload("Proofs").
		Preload("Item").
		Preload("Item.Images").
		First(&claim, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("claim not found")
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *gormRepository) GetByItemAndClaimant(ctx context.Context, itemID, claimantID uuid.UUID) (*Claim, error) {
	var claim Claim
	err := r.db.WithContext(ctx).
		First(&claim, "item_id = ? AND claimant_id = ?", itemID, claimantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *gormRepository) HasActiveClaim(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Claim{}).
		Where("item_id = ? AND status IN ?", itemID, []ClaimStatus{StatusPending, StatusApproved}).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) ListByClaimant(ctx context.Context, claimantID uuid.UUID) ([]Claim, error) {
	var result []Claim
	err := r.db.WithContext(ctx).
		Preload("Proofs").
		Preload("Item").
		Preload("Item.Images").
		Where("claimant_id = ?", claimantID).
		Order("created_at DESC").
		Find(&result).Error
	return result, err
}

func (r *gormRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]Claim, error) {
	var result []Claim
	err := r.db.WithContext(ctx).
		Preload("Proofs").
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&result).Error
	return result, err
}

func (r *gormRepository) List(ctx context.Context, status *ClaimStatus, page, limit int) ([]Claim, int64, error) {
	query := r.db.WithContext(ctx).Model(&Claim{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []Claim
	err := query.
		Preload("Proofs").
		Preload("Item").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&result).Error
	return result, total, err
}

func (r *gormRepository) CreateWithProofs(ctx context.Context, claim *Claim) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the item row so two concurrent submissions serialize here;
		// the loser re-reads state that already fails the checks below.
		var item items.Item
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, "id = ?", claim.ItemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("item not found")
		}
		if err != nil {
			return err
		}

		if !item.Claimable() {
			return apperrors.Conflict("this item cannot be claimed")
		}

		var active int64
		if err := tx.Model(&Claim{}).
			Where("item_id = ? AND status IN ?", claim.ItemID, []ClaimStatus{StatusPending, StatusApproved}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperrors.Conflict("this item already has an active claim")
		}

		claim.Status = StatusPending
		if err := tx.Create(claim).Error; err != nil {
			return err
		}

		// Remember the origin status so a later rejection can restore it.
		previous := item.Status
		return tx.Model(&items.Item{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"status":              items.StatusClaimed,
				"status_before_claim": previous,
			}).Error
	})
}

func (r *gormRepository) Approve(ctx context.Context, claimID uuid.UUID, comment string) (*Claim, error) {
	var approved *Claim
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claim Claim
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&claim, "id = ?", claimID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("claim not found")
		}
		if err != nil {
			return err
		}

		if claim.Status != StatusPending {
			return apperrors.Conflict("only pending claims can be approved")
		}

		if err := tx.Model(&Claim{}).
			Where("id = ?", claimID).
			Updates(map[string]interface{}{
				"status":        StatusApproved,
				"admin_comment": comment,
			}).Error; err != nil {
			return err
		}

		// First approval wins: every sibling still PENDING loses,
		// regardless of submission order or score.
		if err := tx.Model(&Claim{}).
			Where("item_id = ? AND id <> ? AND status = ?", claim.ItemID, claimID, StatusPending).
			Updates(map[string]interface{}{
				"status":        StatusRejected,
				"admin_comment": supersededNote,
			}).Error; err != nil {
			return err
		}

		claim.Status = StatusApproved
		claim.AdminComment = comment
		approved = &claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (r *gormRepository) Reject(ctx context.Context, claimID uuid.UUID, reason string) (*Claim, error) {
	var rejected *Claim
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claim Claim
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&claim, "id = ?", claimID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("claim not found")
		}
		if err != nil {
			return err
		}

		if claim.Status != StatusPending {
			return apperrors.Conflict("only pending claims can be rejected")
		}

		if err := tx.Model(&Claim{}).
			Where("id = ?", claimID).
			Updates(map[string]interface{}{
				"status":        StatusRejected,
				"admin_comment": reason,
			}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&Claim{}).
			Where("item_id = ? AND status = ?", claim.ItemID, StatusPending).
			Count(&remaining).Error; err != nil {
			return err
		}

		if remaining == 0 {
			var item items.Item
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&item, "id = ?", claim.ItemID).Error; err != nil {
				return err
			}
			if item.Status == items.StatusClaimed {
				restored := items.StatusFound
				if item.StatusBeforeClaim != nil {
					restored = *item.StatusBeforeClaim
				}
				if err := tx.Model(&items.Item{}).
					Where("id = ?", item.ID).
					Updates(map[string]interface{}{
						"status":              restored,
						"status_before_claim": nil,
					}).Error; err != nil {
					return err
				}
			}
		}

		claim.Status = StatusRejected
		claim.AdminComment = reason
		rejected = &claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (r *gormRepository) MarkItemRecovered(ctx context.Context, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&items.Item{}).
		Where("id = ?", itemID).
		Update("status", items.StatusRecovered)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("item not found")
	}
	return nil
}

func (r *gormRepository) CountApprovedForItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Claim{}).
		Where("item_id = ? AND status = ?", itemID, StatusApproved).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) SnapshotItemStates(ctx context.Context) ([]ItemState, error) {
	var states []ItemState
	err := r.db.WithContext(ctx).Raw(`
		SELECT items.id AS item_id,
		       items.status AS status,
		       COUNT(*) FILTER (WHERE claims.status = 'PENDING') AS pending,
		       COUNT(*) FILTER (WHERE claims.status = 'APPROVED') AS approved
		FROM items
		LEFT JOIN claims ON claims.item_id = items.id
		GROUP BY items.id, items.status`).
		Scan(&states).Error
	return states, err
}

func (r *gormRepository) CountApprovedAgainstReporter(ctx context.Context, claimantID, reporterID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Claim{}).
		Joins("JOIN items ON items.id = claims.item_id").
		Where("claims.claimant_id = ? AND claims.status = ? AND items.created_by_id = ? AND claims.created_at >= ?",
			claimantID, StatusApproved, reporterID, since).
		Count(&count).Error
	return count, err
}
