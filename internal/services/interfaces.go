package services

import (
	"time"

	"aquatrack/internal/models"
	"aquatrack/internal/pagination"
)

// UserInfoUpdate holds the optional profile fields of a PATCH /users/info
// request. Nil fields keep their current value.
type UserInfoUpdate struct {
	Name                  *string
	Weight                *float64
	DailyActiveTime       *float64
	DailyWaterConsumption *float64
	Gender                *models.Gender
}

// UserServicer defines the contract for user and session business logic.
type UserServicer interface {
	Register(email, password string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	StoreAccessToken(userID uint, token string) error
	ClearAccessToken(userID uint) error
	UpdateInfo(userID uint, upd UserInfoUpdate) (*models.User, error)
	UpdatePhoto(userID uint, photoURL string) (*models.User, error)
	ListUsers() (int64, []models.User, error)
	UpdateAccess(userID uint, access models.AccessLevel) (*models.User, error)
	FindOrCreateGoogleUser(email, name, photo string) (*models.User, error)
	CreateResetToken(email string) (string, *models.User, error)
	ResetPassword(token, newPassword string) error
}

// WaterEntryUpdate holds the optional fields of a PATCH /water/:id request.
// Nil fields keep their current value; percentage is always recomputed from
// the resolved amount and norm.
type WaterEntryUpdate struct {
	Amount *float64
	Date   *time.Time
	Norm   *float64
}

// DailySummary aggregates all entries of one owner within one UTC calendar day.
type DailySummary struct {
	Entries         []models.WaterEntry `json:"entries"`
	TotalAmount     float64             `json:"totalAmount"`
	TotalPercentage float64             `json:"totalPercentage"`
}

// WaterServicer defines the contract for water-intake business logic.
type WaterServicer interface {
	Create(ownerID uint, amount float64, date time.Time, norm *float64) (*models.WaterEntry, error)
	GetByID(ownerID, entryID uint) (*models.WaterEntry, error)
	Update(ownerID, entryID uint, upd WaterEntryUpdate) (*models.WaterEntry, error)
	Delete(ownerID, entryID uint) error
	List(ownerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WaterEntry], error)
	DailySummary(ownerID uint, ts time.Time) (*DailySummary, error)
}
