package items

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	maxImagesPerItem = 5
)

// ReportItemRequest is the payload for reporting a lost or found item
type ReportItemRequest struct {
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	Category    ItemCategory `json:"category" binding:"required"`
	Status      ItemStatus   `json:"status" binding:"required"`
	Location    string       `json:"location"`
	ReportedAt  *time.Time   `json:"reported_at"`
	ImageURLs   []string     `json:"image_urls"`
}

// ListResponse is a page of items
type ListResponse struct {
	Items      []Item     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Service handles item reporting and browsing. Status transitions after
// creation belong to the claim lifecycle, not this service.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ReportItem creates an item in LOST or FOUND status.
func (s *Service) ReportItem(ctx context.Context, req ReportItemRequest, reporterID uuid.UUID) (*Item, error) {
	if req.Status != StatusLost && req.Status != StatusFound {
		return nil, apperrors.Validation("status must be LOST or FOUND")
	}
	if !ValidCategory(req.Category) {
		return nil, apperrors.Validation("invalid item category")
	}
	if len(req.ImageURLs) > maxImagesPerItem {
		return nil, apperrors.Validation("too many images")
	}

	reportedAt := time.Now()
	if req.ReportedAt != nil {
		reportedAt = *req.ReportedAt
	}

	item := &Item{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		Location:    req.Location,
		ReportedAt:  reportedAt,
		CreatedByID: reporterID,
	}
	for _, url := range req.ImageURLs {
		item.Images = append(item.Images, ItemImage{ImageURL: url})
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Item reported",
		zap.String("item_id", item.ID.String()),
		zap.String("status", string(item.Status)),
		zap.String("reporter", reporterID.String()))

	return item, nil
}

// GetItem returns one item with its images.
func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// ListItems returns a filtered page of items, newest report first.
func (s *Service) ListItems(ctx context.Context, filter ItemFilter) (*ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	results, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}

	return &ListResponse{
		Items: results,
		Pagination: Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}
