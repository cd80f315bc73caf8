package models

import "time"

// Gender is the user's self-reported gender, used to suggest a daily norm.
type Gender string

const (
	GenderWoman Gender = "woman"
	GenderMan   Gender = "man"
)

// AccessLevel controls access to the admin-only endpoints.
type AccessLevel string

const (
	AccessUser  AccessLevel = "user"
	AccessAdmin AccessLevel = "admin"
)

// User represents a registered account. The password column always holds a
// bcrypt hash; accounts provisioned through Google OAuth get a random
// unusable password so the column is never empty.
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Profile
	Name                  string      `gorm:"default:User" json:"name"`
	Weight                float64     `gorm:"default:0" json:"weight"`
	DailyActiveTime       float64     `gorm:"default:0" json:"daily_active_time"`
	DailyWaterConsumption float64     `gorm:"default:1.5" json:"daily_water_consumption"`
	Gender                Gender      `gorm:"default:man" json:"gender"`
	Photo                 *string     `json:"photo"`
	Access                AccessLevel `gorm:"default:user" json:"access"`

	// Session linkage: the last-issued access token. Overwritten on every
	// login/refresh, cleared on logout. Prior tokens stay cryptographically
	// valid until expiry; there is no revocation list.
	Token *string `json:"-"`

	// Email verification
	Verify            bool   `gorm:"default:false" json:"verify"`
	VerificationToken string `gorm:"not null" json:"-"`

	// Password reset
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	Entries []WaterEntry `gorm:"foreignKey:OwnerID" json:"-"`
}
