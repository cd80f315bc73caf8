package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/models"
	"aquatrack/internal/uuid"
)

// resetTokenTTL is how long a password-reset link stays usable.
const resetTokenTTL = time.Hour

// userService handles user and session business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// Register creates a new unverified account. The caller gets no tokens back;
// issuing a session is a separate login step.
func (s *userService) Register(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	email = strings.ToLower(email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrEmailInUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:             email,
		Password:          string(hashedPassword),
		VerificationToken: uuid.New(),
	}

	if err := s.db.Create(user).Error; err != nil {
		// A concurrent registration can slip past the pre-check; the unique
		// index on email is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailInUse
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// AttemptLogin verifies the credentials. Unknown email and wrong password
// return the same generic error so callers cannot probe which one failed.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// StoreAccessToken persists the latest issued access token on the user row.
// Last write wins; a concurrent login simply overwrites the field.
func (s *userService) StoreAccessToken(userID uint, token string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("token", token)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ClearAccessToken clears the persisted access token on logout.
func (s *userService) ClearAccessToken(userID uint) error {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Update("token", nil).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdateInfo merges the provided profile fields over the current values.
func (s *userService) UpdateInfo(userID uint, upd UserInfoUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Weight != nil {
		if *upd.Weight < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Weight must not be negative")
		}
		updates["weight"] = *upd.Weight
	}
	if upd.DailyActiveTime != nil {
		if *upd.DailyActiveTime < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Daily active time must not be negative")
		}
		updates["daily_active_time"] = *upd.DailyActiveTime
	}
	if upd.DailyWaterConsumption != nil {
		if *upd.DailyWaterConsumption <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Daily water consumption must be positive")
		}
		updates["daily_water_consumption"] = *upd.DailyWaterConsumption
	}
	if upd.Gender != nil {
		updates["gender"] = *upd.Gender
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return user, nil
}

// UpdatePhoto stores the uploaded avatar URL on the profile.
func (s *userService) UpdatePhoto(userID uint, photoURL string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("photo", photoURL).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// ListUsers returns the total user count and all users ordered by id.
func (s *userService) ListUsers() (int64, []models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var users []models.User
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return 0, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return count, users, nil
}

// UpdateAccess changes a user's access level.
func (s *userService) UpdateAccess(userID uint, access models.AccessLevel) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("access", access).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// FindOrCreateGoogleUser resolves an OAuth profile to a local account. A new
// account gets a random unusable password so the password column is never
// empty, and is considered verified since Google owns the mailbox.
func (s *userService) FindOrCreateGoogleUser(email, name, photo string) (*models.User, error) {
	email = strings.ToLower(email)

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.New()), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := &models.User{
		Email:             email,
		Password:          string(hashedPassword),
		VerificationToken: uuid.New(),
		Verify:            true,
	}
	if name != "" {
		created.Name = name
	}
	if photo != "" {
		created.Photo = &photo
	}

	if err := s.db.Create(created).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return created, nil
}

// CreateResetToken issues a short-lived password-reset token for the account.
func (s *userService) CreateResetToken(email string) (string, *models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", nil, err
	}

	token := uuid.New()
	expires := time.Now().Add(resetTokenTTL)
	updates := map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expires,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return token, user, nil
}

// ResetPassword replaces the password for a valid, unexpired reset token and
// clears the token so it cannot be replayed.
func (s *userService) ResetPassword(token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "token and password are required")
	}
	// Reset tokens are UUIDs; anything else cannot match a row.
	if !uuid.IsValid(token) {
		return apperrors.ErrInvalidResetToken
	}

	var user models.User
	if err := s.db.Where("reset_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.ResetTokenExpiresAt == nil || user.ResetTokenExpiresAt.Before(time.Now()) {
		return apperrors.ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"password":               string(hashedPassword),
		"reset_token":            nil,
		"reset_token_expires_at": nil,
		"token":                  nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}
