package fraud

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/internal/audit"
)

const (
	// LookbackWindow is the rolling period scanned for repeated
	// claimant/reporter pairing.
	LookbackWindow = 7 * 24 * time.Hour
	// ClaimThreshold is the approval count (inclusive of the triggering
	// approval) at which the claimant is banned.
	ClaimThreshold = 3
	// BanDuration is how long a detected account stays suspended.
	BanDuration = 3 * 24 * time.Hour
)

// ClaimCounter counts a claimant's approved claims against one reporter's
// items inside a time window. Satisfied by the claims repository.
type ClaimCounter interface {
	CountApprovedAgainstReporter(ctx context.Context, claimantID, reporterID uuid.UUID, since time.Time) (int64, error)
}

// UserBanner suspends an account until the given time.
type UserBanner interface {
	Ban(ctx context.Context, id uuid.UUID, until time.Time) error
}

// SessionRevoker invalidates every active session for a user. The
// operation is idempotent.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// Recorder appends to the audit trail.
type Recorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action, entity, entityID string, metadata map[string]interface{}) error
}

// Detector is the anti-collusion heuristic run after every claim
// approval: a claimant approved three or more times within a week against
// items from the same reporter is assumed to be fabricating claims with
// that reporter, and gets banned. The triggering approval itself stands;
// the policy suspends the account without reversing decisions.
type Detector struct {
	counter  ClaimCounter
	banner   UserBanner
	sessions SessionRevoker
	auditor  Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewDetector(counter ClaimCounter, banner UserBanner, sessions SessionRevoker, auditor Recorder, logger *zap.Logger) *Detector {
	return &Detector{
		counter:  counter,
		banner:   banner,
		sessions: sessions,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// Check recomputes the pairing count from the claim table (the count is
// never maintained incrementally) and bans the claimant when the
// threshold is met. It returns the count for the approval's audit entry.
func (d *Detector) Check(ctx context.Context, claimantID, reporterID, actorID uuid.UUID) (int64, error) {
	now := d.now()
	since := now.Add(-LookbackWindow)

	count, err := d.counter.CountApprovedAgainstReporter(ctx, claimantID, reporterID, since)
	if err != nil {
		return 0, err
	}

	if count < ClaimThreshold {
		return count, nil
	}

	d.logger.Warn("Suspicious claim pattern detected",
		zap.String("claimant", claimantID.String()),
		zap.String("reporter", reporterID.String()),
		zap.Int64("approved_in_window", count))

	bannedUntil := now.Add(BanDuration)
	if err := d.banner.Ban(ctx, claimantID, bannedUntil); err != nil {
		return count, err
	}

	// Forced logout: the ban is useless while issued tokens stay valid.
	if err := d.sessions.RevokeAll(ctx, claimantID); err != nil {
		d.logger.Error("Failed to revoke sessions for banned user",
			zap.Error(err), zap.String("user", claimantID.String()))
	}

	d.auditor.Record(ctx, actorID, audit.ActionUserBanned, "User", claimantID.String(), map[string]interface{}{
		"reason":             "Collusion / fake claims detected",
		"approved_in_window": count,
		"banned_until":       bannedUntil.Format(time.RFC3339),
	})

	return count, nil
}
