package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/pagination"
	"aquatrack/internal/services"
)

// WaterHandler handles water-intake logging and aggregation.
type WaterHandler struct {
	water services.WaterServicer
}

// NewWaterHandler creates a new WaterHandler.
func NewWaterHandler(water services.WaterServicer) *WaterHandler {
	return &WaterHandler{water: water}
}

// CreateWaterRequest represents the entry creation payload. Norm is optional;
// when omitted the owner's daily goal applies. Percentage is never accepted
// from the client.
type CreateWaterRequest struct {
	Amount float64   `json:"amount" binding:"required,gt=0"`
	Date   time.Time `json:"date" binding:"required"`
	Norm   *float64  `json:"norm" binding:"omitempty,gt=0"`
}

// UpdateWaterRequest represents the partial entry update payload.
type UpdateWaterRequest struct {
	Amount *float64   `json:"amount" binding:"omitempty,gt=0"`
	Date   *time.Time `json:"date" binding:"omitempty"`
	Norm   *float64   `json:"norm" binding:"omitempty,gt=0"`
}

// Create logs a water entry
// @Summary     Log water intake
// @Description Create an entry; percentage is computed from amount and norm
// @Tags        water
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWaterRequest true "Entry data"
// @Success     201 {object} map[string]interface{} "Created entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /water [post]
func (h *WaterHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.water.Create(userID, req.Amount, req.Date, req.Norm)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

// GetByID returns one entry
// @Summary     Get water entry
// @Tags        water
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Entry ID"
// @Success     200 {object} map[string]interface{} "Entry"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /water/{id} [get]
func (h *WaterHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.water.GetByID(userID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

// Update edits one entry
// @Summary     Update water entry
// @Description Merge provided fields over current values and recompute percentage
// @Tags        water
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Entry ID"
// @Param       request body UpdateWaterRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Updated entry"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /water/{id} [patch]
func (h *WaterHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.water.Update(userID, entryID, services.WaterEntryUpdate{
		Amount: req.Amount,
		Date:   req.Date,
		Norm:   req.Norm,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

// Delete removes one entry
// @Summary     Delete water entry
// @Tags        water
// @Security    BearerAuth
// @Param       id path int true "Entry ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /water/{id} [delete]
func (h *WaterHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.water.Delete(userID, entryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns a page of entries
// @Summary     List water entries
// @Tags        water
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{} "Paginated entries"
// @Router      /water [get]
func (h *WaterHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.water.List(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Day returns the daily summary
// @Summary     Daily summary
// @Description Entries and totals for the UTC calendar day of the given date (default today)
// @Tags        water
// @Produce     json
// @Security    BearerAuth
// @Param       date query string false "RFC 3339 timestamp or YYYY-MM-DD"
// @Success     200 {object} services.DailySummary "Daily summary"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Router      /water/day [get]
func (h *WaterHandler) Day(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ts := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date"))
			return
		}
		ts = parsed
	}

	summary, err := h.water.DailySummary(userID, ts)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// parseDate accepts an RFC 3339 timestamp or a plain calendar date.
func parseDate(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}
