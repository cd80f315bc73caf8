package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/logger"
	"aquatrack/internal/models"
	"aquatrack/internal/services"
)

// AvatarUploader abstracts avatar storage for testability.
type AvatarUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

// ResetMailer abstracts the password-reset mail sender.
type ResetMailer interface {
	SendPasswordReset(to, token string) error
}

// UserHandler handles profile management, avatar upload, the admin user
// listing, and the password-reset flow.
type UserHandler struct {
	users   services.UserServicer
	avatars AvatarUploader
	mail    ResetMailer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServicer, avatars AvatarUploader, mail ResetMailer) *UserHandler {
	return &UserHandler{users: users, avatars: avatars, mail: mail}
}

// UpdateInfoRequest represents the partial profile update payload.
type UpdateInfoRequest struct {
	Name                  *string        `json:"name" binding:"omitempty,max=100"`
	Weight                *float64       `json:"weight" binding:"omitempty,min=0"`
	DailyActiveTime       *float64       `json:"daily_active_time" binding:"omitempty,min=0"`
	DailyWaterConsumption *float64       `json:"daily_water_consumption" binding:"omitempty,gt=0"`
	Gender                *models.Gender `json:"gender" binding:"omitempty,gender"`
}

// UpdateAccessRequest represents the access-level change payload.
type UpdateAccessRequest struct {
	Access models.AccessLevel `json:"access" binding:"required,access_level"`
}

// SendResetPasswordRequest carries the email to mail a reset link to.
type SendResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the reset token and the new password.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// UpdateInfo updates the profile
// @Summary     Update profile info
// @Description Merge the provided profile fields over the current values
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateInfoRequest true "Profile fields"
// @Success     200 {object} ProfileResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /users/info [patch]
func (h *UserHandler) UpdateInfo(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.users.UpdateInfo(userID, services.UserInfoUpdate{
		Name:                  req.Name,
		Weight:                req.Weight,
		DailyActiveTime:       req.DailyActiveTime,
		DailyWaterConsumption: req.DailyWaterConsumption,
		Gender:                req.Gender,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

// UploadPhoto uploads an avatar
// @Summary     Upload avatar
// @Description Store the multipart "avatar" file and save its URL on the profile
// @Tags        user
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Avatar URL"
// @Failure     400 {object} ErrorResponse "Missing file"
// @Router      /users/photo [patch]
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Avatar file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer file.Close()

	photoURL, err := h.avatars.Upload(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	if _, err := h.users.UpdatePhoto(userID, photoURL); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo": photoURL})
}

// Count lists all users
// @Summary     User count
// @Description Total user count plus id/email/access for every user
// @Tags        user
// @Produce     json
// @Success     200 {object} map[string]interface{} "Count and users"
// @Router      /users/count [get]
func (h *UserHandler) Count(c *gin.Context) {
	count, users, err := h.users.ListUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":     u.ID,
			"email":  u.Email,
			"access": u.Access,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count": count,
		"users": list,
	})
}

// UpdateAccess changes a user's access level
// @Summary     Update access level
// @Description Set the access level of the user with the given id
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       id path int true "User ID"
// @Param       request body UpdateAccessRequest true "New access level"
// @Success     200 {object} map[string]interface{} "Updated user"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/access [patch]
func (h *UserHandler) UpdateAccess(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.users.UpdateAccess(id, req.Access)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     user.ID,
		"email":  user.Email,
		"access": user.Access,
	})
}

// SendResetPassword mails a reset link
// @Summary     Request password reset
// @Description Issue a one-time reset token and mail it to the account
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       request body SendResetPasswordRequest true "Account email"
// @Success     200 {object} map[string]string "Mail sent"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/send-reset-password [post]
func (h *UserHandler) SendResetPassword(c *gin.Context) {
	var req SendResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, user, err := h.users.CreateResetToken(req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.mail.SendPasswordReset(user.Email, token); err != nil {
		logger.Get().Errorw("reset mail failed", "error", err.Error())
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset password email has been sent"})
}

// ResetPassword sets a new password
// @Summary     Reset password
// @Description Replace the password for a valid reset token
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Token and new password"
// @Success     200 {object} map[string]string "Password updated"
// @Failure     401 {object} ErrorResponse "Invalid or expired token"
// @Router      /users/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.users.ResetPassword(req.Token, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
