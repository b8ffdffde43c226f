package claims

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/internal/audit"
	"findit/campus-portal/lostfound-backend/internal/items"
	"findit/campus-portal/lostfound-backend/pkg/apperrors"
	"findit/campus-portal/lostfound-backend/pkg/workflows"
)

const (
	minProofs     = 1
	maxProofs     = 5
	minProofValue = 5
	maxProofValue = 500
)

// Recorder appends entries to the audit trail. Audit writes are
// best-effort: implementations never fail the enclosing operation.
type Recorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entity, entityID string, metadata map[string]interface{}) error
}

// CollusionChecker runs the post-approval fraud heuristic and returns the
// number of recent approvals it counted for the claimant/reporter pair.
type CollusionChecker interface {
	Check(ctx context.Context, claimantID, reporterID, actorID uuid.UUID) (int64, error)
}

// Lifecycle enforces the legal state transitions of items and claims and
// the transactional invariants tying them together. It is the only writer
// of Item.Status and Claim.Status after creation.
type Lifecycle struct {
	repo      Repository
	itemsRepo items.Repository
	scorer    *Scorer
	collusion CollusionChecker
	auditor   Recorder
	claimSM   *workflows.StateMachine
	logger    *zap.Logger
}

func NewLifecycle(
	repo Repository,
	itemsRepo items.Repository,
	scorer *Scorer,
	collusion CollusionChecker,
	auditor Recorder,
	logger *zap.Logger,
) *Lifecycle {
	return &Lifecycle{
		repo:      repo,
		itemsRepo: itemsRepo,
		scorer:    scorer,
		collusion: collusion,
		auditor:   auditor,
		claimSM:   workflows.NewClaimStateMachine(),
		logger:    logger,
	}
}

// SubmitClaim runs the eligibility checks, computes the verification
// score outside any transaction, then persists the claim and flips the
// item to CLAIMED atomically.
func (l *Lifecycle) SubmitClaim(ctx context.Context, itemID, claimantID uuid.UUID, proofs []ProofInput) (*Claim, error) {
	if err := validateProofs(proofs); err != nil {
		return nil, err
	}

	item, err := l.itemsRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.CreatedByID == claimantID {
		return nil, apperrors.Conflict("you cannot claim your own item")
	}

	if !item.Claimable() {
		return nil, apperrors.Conflict("this item cannot be claimed")
	}

	existing, err := l.repo.GetByItemAndClaimant(ctx, itemID, claimantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("you already have a claim for this item")
	}

	active, err := l.repo.HasActiveClaim(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apperrors.Conflict("this item already has an active claim")
	}

	// Scoring calls out to slow external services, so it happens before
	// the persistence transaction; no row lock is held across it.
	result := l.scorer.Score(ctx, item, proofs)

	claim := &Claim{
		ItemID:            itemID,
		ClaimantID:        claimantID,
		Status:            StatusPending,
		VerificationScore: result.Score,
		VerificationNote:  result.Note,
	}
	for _, p := range proofs {
		claim.Proofs = append(claim.Proofs, Proof{
			Type:     p.Type,
			Value:    p.Value,
			ImageURL: p.ImageURL,
		})
	}

	// Concurrent submissions are expected, not exceptional: the losing
	// transaction surfaces a Conflict after one internal retry.
	if err := l.withRetry(func() error {
		return l.repo.CreateWithProofs(ctx, claim)
	}); err != nil {
		return nil, err
	}

	l.logger.Info("Claim submitted",
		zap.String("claim_id", claim.ID.String()),
		zap.String("item_id", itemID.String()),
		zap.Int("verification_score", result.Score),
		zap.Int("checks", result.ChecksCount))

	return l.repo.GetByID(ctx, claim.ID)
}

// ApproveClaim approves a pending claim, cascade-rejects its siblings, and
// then runs the collusion check. The ban, if any, never undoes the
// approval, and the audit write happens after commit.
func (l *Lifecycle) ApproveClaim(ctx context.Context, claimID uuid.UUID, comment string, adminID uuid.UUID) (*Claim, error) {
	claim, err := l.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !l.claimSM.CanTransition(string(claim.Status), string(StatusApproved)) {
		return nil, apperrors.Conflict("only pending claims can be approved")
	}

	var approved *Claim
	if err := l.withRetry(func() error {
		var txErr error
		approved, txErr = l.repo.Approve(ctx, claimID, comment)
		return txErr
	}); err != nil {
		return nil, err
	}

	var collusionCount int64
	if claim.Item != nil {
		collusionCount, err = l.collusion.Check(ctx, claim.ClaimantID, claim.Item.CreatedByID, adminID)
		if err != nil {
			// Fraud detection is best-effort; a failed check never
			// reverses an approval that already committed.
			l.logger.Error("Collusion check failed", zap.Error(err),
				zap.String("claim_id", claimID.String()))
		}
	}

	l.auditor.Record(ctx, adminID, audit.ActionClaimApproved, "Claim", claimID.String(), map[string]interface{}{
		"item_id":         claim.ItemID.String(),
		"comment":         comment,
		"collusion_check": collusionCount,
	})

	l.logger.Info("Claim approved",
		zap.String("claim_id", claimID.String()),
		zap.String("admin", adminID.String()))

	return approved, nil
}

// RejectClaim rejects a pending claim; when it was the item's last
// pending claim the item's pre-claim status is restored.
func (l *Lifecycle) RejectClaim(ctx context.Context, claimID uuid.UUID, reason string, adminID uuid.UUID) (*Claim, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}

	claim, err := l.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !l.claimSM.CanTransition(string(claim.Status), string(StatusRejected)) {
		return nil, apperrors.Conflict("only pending claims can be rejected")
	}

	var rejected *Claim
	if err := l.withRetry(func() error {
		var txErr error
		rejected, txErr = l.repo.Reject(ctx, claimID, reason)
		return txErr
	}); err != nil {
		return nil, err
	}

	l.auditor.Record(ctx, adminID, audit.ActionClaimRejected, "Claim", claimID.String(), map[string]interface{}{
		"item_id": claim.ItemID.String(),
		"reason":  reason,
	})

	return rejected, nil
}

// HandoverItem marks an item as physically returned. It requires an
// approved claim and is terminal.
func (l *Lifecycle) HandoverItem(ctx context.Context, itemID uuid.UUID, notes string, adminID uuid.UUID) (*items.Item, error) {
	item, err := l.itemsRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.Status == items.StatusRecovered {
		return nil, apperrors.Conflict("item has already been recovered")
	}

	approvedCount, err := l.repo.CountApprovedForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if approvedCount == 0 {
		return nil, apperrors.Conflict("item must have an approved claim before handover")
	}

	if err := l.repo.MarkItemRecovered(ctx, itemID); err != nil {
		return nil, err
	}

	l.auditor.Record(ctx, adminID, audit.ActionItemHandover, "Item", itemID.String(), map[string]interface{}{
		"notes": notes,
	})

	item.Status = items.StatusRecovered
	return item, nil
}

// DeleteItem hard-deletes an item and cascades its claims, proofs and
// images. Destructive; only the audit entry survives.
func (l *Lifecycle) DeleteItem(ctx context.Context, itemID, adminID uuid.UUID, reason string) error {
	if _, err := l.itemsRepo.GetByID(ctx, itemID); err != nil {
		return err
	}

	if err := l.itemsRepo.Delete(ctx, itemID); err != nil {
		return err
	}

	l.auditor.Record(ctx, adminID, audit.ActionItemDeleted, "Item", itemID.String(), map[string]interface{}{
		"reason": reason,
	})

	return nil
}

// GetClaim returns one claim with proofs and item.
func (l *Lifecycle) GetClaim(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	return l.repo.GetByID(ctx, claimID)
}

// ListOwnClaims returns every claim the user has submitted.
func (l *Lifecycle) ListOwnClaims(ctx context.Context, claimantID uuid.UUID) ([]Claim, error) {
	return l.repo.ListByClaimant(ctx, claimantID)
}

// ListItemClaims returns every claim on an item together with the item
// itself, so callers can authorize against its reporter without relying
// on per-claim preloads.
func (l *Lifecycle) ListItemClaims(ctx context.Context, itemID uuid.UUID) ([]Claim, *items.Item, error) {
	item, err := l.itemsRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	result, err := l.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return result, item, nil
}

// ListResponse is a page of claims for the admin surface
type ListResponse struct {
	Claims     []Claim          `json:"claims"`
	Pagination items.Pagination `json:"pagination"`
}

// ListClaims returns a filtered page of claims for admin review.
func (l *Lifecycle) ListClaims(ctx context.Context, status *ClaimStatus, page, limit int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	result, total, err := l.repo.List(ctx, status, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &ListResponse{
		Claims: result,
		Pagination: items.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func validateProofs(proofs []ProofInput) error {
	if len(proofs) < minProofs {
		return apperrors.Validation("at least one proof is required")
	}
	if len(proofs) > maxProofs {
		return apperrors.Validation("maximum 5 proofs allowed")
	}
	for _, p := range proofs {
		if !ValidProofType(p.Type) {
			return apperrors.Validation("invalid proof type")
		}
		if len(p.Value) < minProofValue || len(p.Value) > maxProofValue {
			return apperrors.Validation("proof value must be between 5 and 500 characters")
		}
	}
	return nil
}

// withRetry retries fn once when the database reports a transient
// serialization failure. Business-rule errors surface immediately.
func (l *Lifecycle) withRetry(fn func() error) error {
	err := fn()
	if err == nil || !isRetryable(err) {
		return err
	}
	l.logger.Warn("Retrying transaction after transient conflict", zap.Error(err))
	return fn()
}

func isRetryable(err error) bool {
	if _, ok := apperrors.As(err); ok {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}
