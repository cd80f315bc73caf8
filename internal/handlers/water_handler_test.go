package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/models"
	"aquatrack/internal/pagination"
	"aquatrack/internal/services"
)

// mockWaterService implements services.WaterServicer with overridable functions.
type mockWaterService struct {
	createFn       func(ownerID uint, amount float64, date time.Time, norm *float64) (*models.WaterEntry, error)
	getByIDFn      func(ownerID, entryID uint) (*models.WaterEntry, error)
	updateFn       func(ownerID, entryID uint, upd services.WaterEntryUpdate) (*models.WaterEntry, error)
	deleteFn       func(ownerID, entryID uint) error
	listFn         func(ownerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WaterEntry], error)
	dailySummaryFn func(ownerID uint, ts time.Time) (*services.DailySummary, error)
}

func (m *mockWaterService) Create(ownerID uint, amount float64, date time.Time, norm *float64) (*models.WaterEntry, error) {
	return m.createFn(ownerID, amount, date, norm)
}

func (m *mockWaterService) GetByID(ownerID, entryID uint) (*models.WaterEntry, error) {
	return m.getByIDFn(ownerID, entryID)
}

func (m *mockWaterService) Update(ownerID, entryID uint, upd services.WaterEntryUpdate) (*models.WaterEntry, error) {
	return m.updateFn(ownerID, entryID, upd)
}

func (m *mockWaterService) Delete(ownerID, entryID uint) error {
	return m.deleteFn(ownerID, entryID)
}

func (m *mockWaterService) List(ownerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WaterEntry], error) {
	return m.listFn(ownerID, page)
}

func (m *mockWaterService) DailySummary(ownerID uint, ts time.Time) (*services.DailySummary, error) {
	return m.dailySummaryFn(ownerID, ts)
}

func setupWaterRouter(water services.WaterServicer) *gin.Engine {
	handler := NewWaterHandler(water)

	router := gin.New()
	authed := router.Group("/api/water", func(c *gin.Context) {
		c.Set("userID", uint(1))
	})
	authed.POST("", handler.Create)
	authed.GET("", handler.List)
	authed.GET("/day", handler.Day)
	authed.GET("/:id", handler.GetByID)
	authed.PATCH("/:id", handler.Update)
	authed.DELETE("/:id", handler.Delete)
	return router
}

func testEntry(id, ownerID uint, amount float64) *models.WaterEntry {
	entry := &models.WaterEntry{
		OwnerID:    ownerID,
		Amount:     amount,
		Date:       time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		Norm:       1.5,
		Percentage: services.Percentage(amount, 1.5),
	}
	entry.ID = id
	return entry
}

func TestCreateWaterHandler(t *testing.T) {
	t.Run("creates_entry", func(t *testing.T) {
		var gotOwner uint
		var gotNorm *float64
		water := &mockWaterService{
			createFn: func(ownerID uint, amount float64, date time.Time, norm *float64) (*models.WaterEntry, error) {
				gotOwner = ownerID
				gotNorm = norm
				return testEntry(1, ownerID, amount), nil
			},
		}
		router := setupWaterRouter(water)

		body := `{"amount":500,"date":"2026-08-28T10:00:00Z"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/water", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if gotOwner != 1 {
			t.Errorf("expected owner from context, got %d", gotOwner)
		}
		if gotNorm != nil {
			t.Error("norm must be nil when omitted from the payload")
		}

		var resp struct {
			Data models.WaterEntry `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Data.Percentage != "33.33" {
			t.Errorf("expected percentage 33.33, got %q", resp.Data.Percentage)
		}
	})

	t.Run("rejects_nonpositive_amount", func(t *testing.T) {
		router := setupWaterRouter(&mockWaterService{})

		body := `{"amount":0,"date":"2026-08-28T10:00:00Z"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/water", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("client_cannot_set_percentage", func(t *testing.T) {
		water := &mockWaterService{
			createFn: func(ownerID uint, amount float64, date time.Time, norm *float64) (*models.WaterEntry, error) {
				return testEntry(1, ownerID, amount), nil
			},
		}
		router := setupWaterRouter(water)

		body := `{"amount":500,"date":"2026-08-28T10:00:00Z","percentage":"99.99"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/water", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Data models.WaterEntry `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Data.Percentage != "33.33" {
			t.Errorf("client-supplied percentage leaked through: %q", resp.Data.Percentage)
		}
	})
}

func TestGetWaterHandler(t *testing.T) {
	t.Run("missing_entry", func(t *testing.T) {
		water := &mockWaterService{
			getByIDFn: func(ownerID, entryID uint) (*models.WaterEntry, error) {
				return nil, apperrors.ErrEntryNotFound
			},
		}
		router := setupWaterRouter(water)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/water/42", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if resp := decodeError(t, w.Body); resp.Error.Code != "ENTRY_NOT_FOUND" {
			t.Errorf("expected ENTRY_NOT_FOUND, got %q", resp.Error.Code)
		}
	})

	t.Run("invalid_id", func(t *testing.T) {
		router := setupWaterRouter(&mockWaterService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/water/not-a-number", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestUpdateWaterHandler(t *testing.T) {
	t.Run("passes_partial_fields", func(t *testing.T) {
		var gotUpd services.WaterEntryUpdate
		water := &mockWaterService{
			updateFn: func(ownerID, entryID uint, upd services.WaterEntryUpdate) (*models.WaterEntry, error) {
				gotUpd = upd
				return testEntry(entryID, ownerID, *upd.Amount), nil
			},
		}
		router := setupWaterRouter(water)

		body := `{"amount":750}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/water/5", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if gotUpd.Amount == nil || *gotUpd.Amount != 750 {
			t.Error("expected amount to be forwarded")
		}
		if gotUpd.Date != nil || gotUpd.Norm != nil {
			t.Error("omitted fields must stay nil")
		}
	})

	t.Run("rejects_negative_norm", func(t *testing.T) {
		router := setupWaterRouter(&mockWaterService{})

		body := `{"norm":-1}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/water/5", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestDeleteWaterHandler(t *testing.T) {
	t.Run("deletes_entry", func(t *testing.T) {
		var gotEntry uint
		water := &mockWaterService{
			deleteFn: func(ownerID, entryID uint) error {
				gotEntry = entryID
				return nil
			},
		}
		router := setupWaterRouter(water)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/water/9", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
		if gotEntry != 9 {
			t.Errorf("expected entry 9 to be deleted, got %d", gotEntry)
		}
	})

	t.Run("missing_entry", func(t *testing.T) {
		water := &mockWaterService{
			deleteFn: func(ownerID, entryID uint) error {
				return apperrors.ErrEntryNotFound
			},
		}
		router := setupWaterRouter(water)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/water/9", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}

func TestListWaterHandler(t *testing.T) {
	t.Run("forwards_page_request", func(t *testing.T) {
		var gotPage pagination.PageRequest
		water := &mockWaterService{
			listFn: func(ownerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WaterEntry], error) {
				gotPage = page
				resp := pagination.NewPageResponse([]models.WaterEntry{*testEntry(1, ownerID, 500)}, 2, 10, 11)
				return &resp, nil
			},
		}
		router := setupWaterRouter(water)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/water?page=2&page_size=10", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("unexpected page request: %+v", gotPage)
		}

		var resp pagination.PageResponse[models.WaterEntry]
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.TotalItems != 11 || len(resp.Data) != 1 {
			t.Errorf("unexpected page response: %+v", resp)
		}
	})
}

func TestDayWaterHandler(t *testing.T) {
	t.Run("returns_summary", func(t *testing.T) {
		var gotTS time.Time
		water := &mockWaterService{
			dailySummaryFn: func(ownerID uint, ts time.Time) (*services.DailySummary, error) {
				gotTS = ts
				return &services.DailySummary{
					Entries:         []models.WaterEntry{*testEntry(1, ownerID, 500)},
					TotalAmount:     500,
					TotalPercentage: 33.33,
				}, nil
			},
		}
		router := setupWaterRouter(water)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/water/day?date=2026-08-28", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if gotTS.Year() != 2026 || gotTS.Month() != time.August || gotTS.Day() != 28 {
			t.Errorf("unexpected timestamp forwarded: %v", gotTS)
		}

		var resp services.DailySummary
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.TotalAmount != 500 || resp.TotalPercentage != 33.33 {
			t.Errorf("unexpected totals: %+v", resp)
		}
		if len(resp.Entries) != 1 {
			t.Errorf("expected one entry, got %d", len(resp.Entries))
		}
	})

	t.Run("accepts_rfc3339", func(t *testing.T) {
		water := &mockWaterService{
			dailySummaryFn: func(ownerID uint, ts time.Time) (*services.DailySummary, error) {
				return &services.DailySummary{Entries: []models.WaterEntry{}}, nil
			},
		}
		router := setupWaterRouter(water)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/water/day?date=2026-08-28T23%3A59%3A59Z", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid_date", func(t *testing.T) {
		router := setupWaterRouter(&mockWaterService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/water/day?date=yesterday", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if resp := decodeError(t, w.Body); resp.Error.Code != "INVALID_INPUT" {
			t.Errorf("expected INVALID_INPUT, got %q", resp.Error.Code)
		}
	})
}
