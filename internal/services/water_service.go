package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"gorm.io/gorm"

	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/models"
	"aquatrack/internal/pagination"
)

// Percentage formats amount (millilitres) as a two-decimal percentage of the
// norm (litres). This is the only place the formula lives; entries always go
// through it at write time.
func Percentage(amount, norm float64) string {
	return fmt.Sprintf("%.2f", amount/(norm*1000)*100)
}

// round2 rounds to two decimals, used for summary totals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// waterService handles water-intake business logic.
type waterService struct {
	db    *gorm.DB
	users UserServicer
}

// NewWaterService creates a new WaterServicer. The user service supplies the
// owner's daily norm when an entry omits one.
func NewWaterService(db *gorm.DB, users UserServicer) WaterServicer {
	return &waterService{db: db, users: users}
}

// Create logs a new water entry. A nil norm falls back to the owner's daily
// water consumption goal.
func (s *waterService) Create(ownerID uint, amount float64, date time.Time, norm *float64) (*models.WaterEntry, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be a positive number")
	}

	resolvedNorm := 0.0
	if norm != nil {
		resolvedNorm = *norm
	} else {
		owner, err := s.users.GetUserByID(ownerID)
		if err != nil {
			return nil, err
		}
		resolvedNorm = owner.DailyWaterConsumption
	}
	if resolvedNorm <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Norm must be a positive number")
	}

	entry := &models.WaterEntry{
		OwnerID:    ownerID,
		Amount:     amount,
		Date:       date,
		Norm:       resolvedNorm,
		Percentage: Percentage(amount, resolvedNorm),
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return entry, nil
}

// GetByID returns an entry if it belongs to the owner.
func (s *waterService) GetByID(ownerID, entryID uint) (*models.WaterEntry, error) {
	var entry models.WaterEntry
	if err := s.db.Where("id = ? AND owner_id = ?", entryID, ownerID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// Update merges the provided fields over the current values and recomputes
// the percentage from the resolved amount and norm.
func (s *waterService) Update(ownerID, entryID uint, upd WaterEntryUpdate) (*models.WaterEntry, error) {
	entry, err := s.GetByID(ownerID, entryID)
	if err != nil {
		return nil, err
	}

	amount := entry.Amount
	if upd.Amount != nil {
		amount = *upd.Amount
	}
	norm := entry.Norm
	if upd.Norm != nil {
		norm = *upd.Norm
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be a positive number")
	}
	if norm <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Norm must be a positive number")
	}

	updates := map[string]interface{}{
		"amount":     amount,
		"norm":       norm,
		"percentage": Percentage(amount, norm),
	}
	if upd.Date != nil {
		updates["date"] = *upd.Date
	}

	if err := s.db.Model(entry).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return entry, nil
}

// Delete removes an entry if it belongs to the owner.
func (s *waterService) Delete(ownerID, entryID uint) error {
	result := s.db.Where("id = ? AND owner_id = ?", entryID, ownerID).Delete(&models.WaterEntry{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrEntryNotFound
	}
	return nil
}

// List returns a paginated list of the owner's entries, newest first.
func (s *waterService) List(ownerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WaterEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.WaterEntry{}).Where("owner_id = ?", ownerID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.WaterEntry
	if err := base.Order("date DESC").Scopes(page.Scope()).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DailySummary aggregates the owner's entries within the UTC calendar day of
// the given timestamp. A day with no entries yields zero totals and an empty
// list, not an error.
func (s *waterService) DailySummary(ownerID uint, ts time.Time) (*DailySummary, error) {
	utc := ts.UTC()
	dayStart := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	var entries []models.WaterEntry
	if err := s.db.
		Where("owner_id = ? AND date >= ? AND date <= ?", ownerID, dayStart, dayEnd).
		Order("date ASC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &DailySummary{Entries: entries}
	if summary.Entries == nil {
		summary.Entries = []models.WaterEntry{}
	}

	totalPercentage := 0.0
	for _, e := range entries {
		summary.TotalAmount += e.Amount
		p, err := strconv.ParseFloat(e.Percentage, 64)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		totalPercentage += p
	}
	summary.TotalPercentage = round2(totalPercentage)

	return summary, nil
}
