package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"aquatrack/internal/models"
	"aquatrack/internal/uuid"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email. The password
// is always "password123" hashed at min cost.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:             email,
		Password:          string(hash),
		VerificationToken: uuid.New(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserWithNorm creates a user with the given daily water goal.
func CreateTestUserWithNorm(t *testing.T, db *gorm.DB, norm float64) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("daily_water_consumption", norm).Error; err != nil {
		t.Fatalf("failed to set daily water consumption: %v", err)
	}
	user.DailyWaterConsumption = norm
	return user
}

// CreateTestEntry creates a water entry for the owner at the given date.
func CreateTestEntry(t *testing.T, db *gorm.DB, ownerID uint, amount float64, date time.Time) *models.WaterEntry {
	t.Helper()
	return CreateTestEntryWithNorm(t, db, ownerID, amount, date, 1.5)
}

// CreateTestEntryWithNorm creates a water entry with an explicit norm. The
// percentage column is derived the same way the service derives it.
func CreateTestEntryWithNorm(t *testing.T, db *gorm.DB, ownerID uint, amount float64, date time.Time, norm float64) *models.WaterEntry {
	t.Helper()

	entry := &models.WaterEntry{
		OwnerID:    ownerID,
		Amount:     amount,
		Date:       date,
		Norm:       norm,
		Percentage: fmt.Sprintf("%.2f", amount/(norm*1000)*100),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test water entry: %v", err)
	}
	return entry
}
