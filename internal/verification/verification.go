package verification

import (
	"context"
)

// ImageScorer compares a claimant's photo against an item's registered
// image and returns a similarity percentage in [0,100].
type ImageScorer interface {
	ScoreImage(ctx context.Context, originalImageURL, claimImagePath string) (float64, error)
}

// TextScorer compares a claimant's description against the item's
// description and returns a probability-of-match in [0,100].
type TextScorer interface {
	ScoreText(ctx context.Context, originalDescription, claimDescription string) (float64, error)
}
