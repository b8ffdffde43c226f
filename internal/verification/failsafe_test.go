package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubImageScorer struct {
	score float64
	err   error
	delay time.Duration
}

func (s *stubImageScorer) ScoreImage(ctx context.Context, originalImageURL, claimImagePath string) (float64, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return s.score, s.err
}

type stubTextScorer struct {
	score float64
	err   error
}

func (s *stubTextScorer) ScoreText(ctx context.Context, originalDescription, claimDescription string) (float64, error) {
	return s.score, s.err
}

func TestFailsafeImageScorerPassesThrough(t *testing.T) {
	scorer := NewFailsafeImageScorer(&stubImageScorer{score: 87.5}, time.Second, zap.NewNop())

	score, err := scorer.ScoreImage(context.Background(), "http://example.com/a.jpg", "uploads/b.jpg")

	assert.NoError(t, err)
	assert.Equal(t, 87.5, score)
}

func TestFailsafeImageScorerZeroOnError(t *testing.T) {
	scorer := NewFailsafeImageScorer(&stubImageScorer{err: errors.New("connection refused")}, time.Second, zap.NewNop())

	score, err := scorer.ScoreImage(context.Background(), "http://example.com/a.jpg", "uploads/b.jpg")

	assert.NoError(t, err)
	assert.Zero(t, score)
}

func TestFailsafeImageScorerZeroOnTimeout(t *testing.T) {
	scorer := NewFailsafeImageScorer(&stubImageScorer{score: 90, delay: 200 * time.Millisecond}, 10*time.Millisecond, zap.NewNop())

	score, err := scorer.ScoreImage(context.Background(), "http://example.com/a.jpg", "uploads/b.jpg")

	assert.NoError(t, err)
	assert.Zero(t, score)
}

func TestFailsafeTextScorerZeroOnError(t *testing.T) {
	scorer := NewFailsafeTextScorer(&stubTextScorer{err: errors.New("non-numeric response")}, time.Second, zap.NewNop())

	score, err := scorer.ScoreText(context.Background(), "black wallet", "a wallet")

	assert.NoError(t, err)
	assert.Zero(t, score)
}

func TestFailsafeClampsOutOfRangeScores(t *testing.T) {
	high := NewFailsafeTextScorer(&stubTextScorer{score: 180}, time.Second, zap.NewNop())
	low := NewFailsafeTextScorer(&stubTextScorer{score: -20}, time.Second, zap.NewNop())

	score, _ := high.ScoreText(context.Background(), "a", "b")
	assert.Equal(t, float64(100), score)

	score, _ = low.ScoreText(context.Background(), "a", "b")
	assert.Zero(t, score)
}

func TestGeminiClientMissingKeyIsSoftZero(t *testing.T) {
	client := NewGeminiClient("")

	score, err := client.ScoreText(context.Background(), "original", "claim")

	assert.NoError(t, err)
	assert.Zero(t, score)
}
