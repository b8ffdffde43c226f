package verification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Fail-safe wrappers around the raw scorer clients. Every call is bounded
// by a timeout, and any error collapses to a zero score so that a broken
// or slow scorer can never block or fail a claim submission. A zero from a
// struggling scorer is indistinguishable from weak evidence; that tradeoff
// is deliberate.

type FailsafeImageScorer struct {
	inner   ImageScorer
	timeout time.Duration
	logger  *zap.Logger
}

func NewFailsafeImageScorer(inner ImageScorer, timeout time.Duration, logger *zap.Logger) *FailsafeImageScorer {
	return &FailsafeImageScorer{inner: inner, timeout: timeout, logger: logger}
}

func (s *FailsafeImageScorer) ScoreImage(ctx context.Context, originalImageURL, claimImagePath string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	score, err := s.inner.ScoreImage(ctx, originalImageURL, claimImagePath)
	if err != nil {
		s.logger.Warn("Image verification failed, scoring 0", zap.Error(err))
		return 0, nil
	}
	return clamp(score), nil
}

type FailsafeTextScorer struct {
	inner   TextScorer
	timeout time.Duration
	logger  *zap.Logger
}

func NewFailsafeTextScorer(inner TextScorer, timeout time.Duration, logger *zap.Logger) *FailsafeTextScorer {
	return &FailsafeTextScorer{inner: inner, timeout: timeout, logger: logger}
}

func (s *FailsafeTextScorer) ScoreText(ctx context.Context, originalDescription, claimDescription string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	score, err := s.inner.ScoreText(ctx, originalDescription, claimDescription)
	if err != nil {
		s.logger.Warn("Text verification failed, scoring 0", zap.Error(err))
		return 0, nil
	}
	return clamp(score), nil
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
