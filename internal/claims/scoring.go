package claims

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/internal/items"
	"findit/campus-portal/lostfound-backend/internal/verification"
)

// ProofInput is one piece of evidence in a claim submission
type ProofInput struct {
	Type     ProofType `json:"type" binding:"required"`
	Value    string    `json:"value" binding:"required"`
	ImageURL string    `json:"image_url"`
}

// ScoreResult is the advisory verification outcome stored on a claim
type ScoreResult struct {
	Score       int
	Note        string
	ChecksCount int
}

// Scorer produces the automatic confidence score for a fresh claim.
// Scoring is a courtesy for the reviewing admin: it runs before the claim
// is persisted, never blocks or fails the submission, and collapses every
// scorer problem to zero.
type Scorer struct {
	imageScorer verification.ImageScorer
	textScorer  verification.TextScorer
	uploadDir   string
	logger      *zap.Logger
}

func NewScorer(imageScorer verification.ImageScorer, textScorer verification.TextScorer, uploadDir string, logger *zap.Logger) *Scorer {
	return &Scorer{
		imageScorer: imageScorer,
		textScorer:  textScorer,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

// Score evaluates each scorable proof against the item's canonical record
// and aggregates with an arithmetic mean over the attempted checks. A
// failed check scores zero rather than dropping out of the mean, the same
// result the fail-safe scorer wrappers produce. Image proofs compare
// against the item's first registered image; description-style proofs
// compare against the item description. Other proof types contribute
// nothing.
func (s *Scorer) Score(ctx context.Context, item *items.Item, proofs []ProofInput) ScoreResult {
	var sum float64
	var checks int
	var details []string

	if len(item.Images) > 0 {
		originalImageURL := item.Images[0].ImageURL

		for _, proof := range proofs {
			if proof.Type != ProofImage || proof.ImageURL == "" {
				continue
			}
			score, err := s.imageScorer.ScoreImage(ctx, originalImageURL, s.resolvePath(proof.ImageURL))
			if err != nil {
				s.logger.Warn("Image proof scoring failed", zap.Error(err))
				score = 0
			}
			sum += score
			checks++
			details = append(details, fmt.Sprintf("Image Match: %d%%", int(math.Round(score))))
		}
	}

	if item.Description != "" {
		for _, proof := range proofs {
			if proof.Type != ProofDescription && proof.Type != ProofAnswers {
				continue
			}
			score, err := s.textScorer.ScoreText(ctx, item.Description, proof.Value)
			if err != nil {
				s.logger.Warn("Text proof scoring failed", zap.Error(err))
				score = 0
			}
			sum += score
			checks++
			details = append(details, fmt.Sprintf("Text Match: %d%%", int(math.Round(score))))
		}
	}

	final := 0
	if checks > 0 {
		final = int(math.Round(sum / float64(checks)))
	}

	return ScoreResult{
		Score:       final,
		Note:        fmt.Sprintf("Auto-Verification Score: %d%% [%s]", final, strings.Join(details, ", ")),
		ChecksCount: checks,
	}
}

func (s *Scorer) resolvePath(imageURL string) string {
	if strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://") {
		return imageURL
	}
	if filepath.IsAbs(imageURL) {
		return imageURL
	}
	return filepath.Join(s.uploadDir, imageURL)
}
