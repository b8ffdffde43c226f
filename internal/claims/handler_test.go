package claims

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func claimsTestRouter(f *lifecycleFixture, userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("userID", userID.String())
		c.Set("role", role)
	})
	NewHandler(f.lifecycle, f.lifecycle.logger).RegisterRoutes(group)
	return router
}

func decodeClaims(t *testing.T, body []byte) []Claim {
	var resp struct {
		Claims []Claim `json:"claims"`
	}
	assert.NoError(t, json.Unmarshal(body, &resp))
	return resp.Claims
}

func TestListItemClaimsReporterSeesAllClaims(t *testing.T) {
	f := newLifecycleFixture(0, 0)
	reporter := uuid.New()
	item := foundItem(reporter)
	claimant := uuid.New()

	f.itemsRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	// The item association is not loaded on per-item listings; the
	// reporter check must not depend on it.
	f.repo.On("ListByItem", mock.Anything, item.ID).Return([]Claim{
		{ID: uuid.New(), ItemID: item.ID, ClaimantID: claimant, Status: StatusPending, Item: nil},
	}, nil)

	router := claimsTestRouter(f, reporter, "USER")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/items/%s/claims", item.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeClaims(t, w.Body.Bytes()), 1)
}

func TestListItemClaimsStrangerSeesNone(t *testing.T) {
	f := newLifecycleFixture(0, 0)
	item := foundItem(uuid.New())

	f.itemsRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	f.repo.On("ListByItem", mock.Anything, item.ID).Return([]Claim{
		{ID: uuid.New(), ItemID: item.ID, ClaimantID: uuid.New(), Status: StatusPending},
	}, nil)

	router := claimsTestRouter(f, uuid.New(), "USER")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/items/%s/claims", item.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeClaims(t, w.Body.Bytes()))
}

func TestListItemClaimsClaimantSeesOnlyOwn(t *testing.T) {
	f := newLifecycleFixture(0, 0)
	item := foundItem(uuid.New())
	claimant := uuid.New()
	own := Claim{ID: uuid.New(), ItemID: item.ID, ClaimantID: claimant, Status: StatusRejected}

	f.itemsRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	f.repo.On("ListByItem", mock.Anything, item.ID).Return([]Claim{
		own,
		{ID: uuid.New(), ItemID: item.ID, ClaimantID: uuid.New(), Status: StatusPending},
	}, nil)

	router := claimsTestRouter(f, claimant, "USER")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/items/%s/claims", item.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeClaims(t, w.Body.Bytes())
	assert.Len(t, got, 1)
	assert.Equal(t, own.ID, got[0].ID)
}

func TestListItemClaimsAdminSeesAll(t *testing.T) {
	f := newLifecycleFixture(0, 0)
	item := foundItem(uuid.New())

	f.itemsRepo.On("GetByID", mock.Anything, item.ID).Return(item, nil)
	f.repo.On("ListByItem", mock.Anything, item.ID).Return([]Claim{
		{ID: uuid.New(), ItemID: item.ID, ClaimantID: uuid.New(), Status: StatusPending},
		{ID: uuid.New(), ItemID: item.ID, ClaimantID: uuid.New(), Status: StatusRejected},
	}, nil)

	router := claimsTestRouter(f, uuid.New(), "ADMIN")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/items/%s/claims", item.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeClaims(t, w.Body.Bytes()), 2)
}
