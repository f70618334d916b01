package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Habib-0007/habsblog-api/config"
	"github.com/Habib-0007/habsblog-api/media"
	"github.com/Habib-0007/habsblog-api/models"
	"github.com/Habib-0007/habsblog-api/utils"
)

const resetTokenTTL = 10 * time.Minute

// AuthService handles registration, login, token issuance and rotation,
// password reset and profile maintenance.
type AuthService struct {
	db    *gorm.DB
	media media.Store
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(db *gorm.DB, store media.Store) *AuthService {
	return &AuthService{db: db, media: store}
}

// RegisterInput carries the registration fields. Avatar is an optional
// base64 data-URI payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   string
}

// TokenPair is an access token plus the refresh token backing it.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new account. The welcome email is fire-and-forget.
func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrValidation("name is required")
	}
	if len([]rune(name)) > 50 {
		return nil, ErrValidation("name cannot be more than 50 characters")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < 6 {
		return nil, ErrValidation("password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, ErrInternal(err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	if in.Avatar != "" {
		asset, err := s.media.Upload(in.Avatar, "users/avatars")
		if err != nil {
			return nil, ErrDependency("avatar upload failed", err)
		}
		user.Avatar = asset.URL
		user.AvatarAssetID = asset.ID
	}

	if err := s.db.Create(user).Error; err != nil {
		s.cleanupAsset(user.AvatarAssetID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("user already exists with that email")
		}
		return nil, ErrInternal(err)
	}

	go func(to, name string) {
		if err := utils.SendWelcomeEmail(to, name); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("welcome email to %s failed: %v", to, err)
		}
	}(user.Email, user.Name)

	return user, nil
}

// Login verifies credentials. The same Unauthenticated error is returned
// for an unknown email and a wrong password.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated("invalid credentials")
		}
		return nil, ErrInternal(err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthenticated("invalid credentials")
	}
	return &user, nil
}

// IssueTokens signs an access/refresh pair and persists the refresh token.
// Existing refresh tokens are left alone so other devices stay signed in.
func (s *AuthService) IssueTokens(user *models.User) (*TokenPair, error) {
	access, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, ErrInternal(err)
	}
	refresh, expiresAt, err := utils.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, ErrInternal(err)
	}

	record := &models.AuthToken{
		UserID:    user.ID,
		Token:     refresh,
		Kind:      models.TokenRefresh,
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, ErrInternal(err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a stored, unexpired refresh token for a new access
// token. A token that fails JWT verification is consumed so it cannot be
// retried.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	var record models.AuthToken
	err := s.db.Where("token = ? AND kind = ? AND expires_at > ?",
		refreshToken, models.TokenRefresh, time.Now()).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUnauthenticated("invalid or expired refresh token")
		}
		return "", ErrInternal(err)
	}

	claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		_ = s.db.Delete(&record).Error
		return "", ErrUnauthenticated("invalid refresh token")
	}

	access, err := utils.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		return "", ErrInternal(err)
	}
	return access, nil
}

// Logout deletes the actor's refresh token and revokes the presented
// access token until its natural expiry.
func (s *AuthService) Logout(actor Actor, refreshToken, accessToken string) error {
	if err := s.db.Where("user_id = ? AND token = ? AND kind = ?",
		actor.ID, refreshToken, models.TokenRefresh).Delete(&models.AuthToken{}).Error; err != nil {
		return ErrInternal(err)
	}
	if accessToken != "" {
		if claims, err := utils.ParseToken(accessToken); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(accessToken, claims.ExpiresAt.Time)
		}
	}
	return nil
}

// ForgotPassword generates a reset token for the account, stores its
// sha256 and mails the raw value. Returns NotFound for an unknown email.
func (s *AuthService) ForgotPassword(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("there is no user with that email")
		}
		return ErrInternal(err)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return ErrInternal(err)
	}
	resetToken := hex.EncodeToString(raw)
	hashed := hashResetToken(resetToken)
	expires := time.Now().Add(resetTokenTTL)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"reset_password_token":  hashed,
			"reset_password_expire": expires,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuthToken{
			UserID:    user.ID,
			Token:     hashed,
			Kind:      models.TokenPasswordReset,
			ExpiresAt: expires,
		}).Error
	})
	if err != nil {
		return ErrInternal(err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s",
		strings.TrimRight(config.Get().FrontendURL, "/"), resetToken)
	go func(to, name, url string) {
		if err := utils.SendPasswordResetEmail(to, name, url); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("password reset email to %s failed: %v", to, err)
		}
	}(user.Email, user.Name, resetURL)

	return nil
}

// ResetPassword consumes an unexpired reset token and sets a new password.
func (s *AuthService) ResetPassword(resetToken, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrValidation("password must be at least 6 characters")
	}

	hashed := hashResetToken(resetToken)
	var record models.AuthToken
	err := s.db.Where("token = ? AND kind = ? AND expires_at > ?",
		hashed, models.TokenPasswordReset, time.Now()).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrValidation("invalid or expired token")
		}
		return ErrInternal(err)
	}

	var user models.User
	if err := s.db.First(&user, record.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("user not found")
		}
		return ErrInternal(err)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return ErrInternal(err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"password_hash":         hash,
			"reset_password_token":  "",
			"reset_password_expire": nil,
		}).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		return ErrInternal(err)
	}
	return nil
}

// UpdateProfileInput carries partial profile fields. Avatar is a base64
// data-URI payload; replacing it deletes the old asset best-effort.
type UpdateProfileInput struct {
	Name   string
	Email  string
	Bio    string
	Avatar string
}

// UpdateProfile applies a partial update to the actor's own profile.
func (s *AuthService) UpdateProfile(actor Actor, in UpdateProfileInput) (*models.User, error) {
	user, err := s.findUser(actor.ID)
	if err != nil {
		return nil, err
	}

	if in.Avatar != "" {
		s.cleanupAsset(user.AvatarAssetID)
		asset, err := s.media.Upload(in.Avatar, "users/avatars")
		if err != nil {
			return nil, ErrDependency("avatar upload failed", err)
		}
		user.Avatar = asset.URL
		user.AvatarAssetID = asset.ID
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		if len([]rune(name)) > 50 {
			return nil, ErrValidation("name cannot be more than 50 characters")
		}
		user.Name = name
	}
	if in.Email != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Bio != "" {
		if len([]rune(in.Bio)) > 500 {
			return nil, ErrValidation("bio cannot be more than 500 characters")
		}
		user.Bio = in.Bio
	}

	if err := s.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("user already exists with that email")
		}
		return nil, ErrInternal(err)
	}
	return user, nil
}

// UpdatePassword verifies the current password before setting a new one.
func (s *AuthService) UpdatePassword(actor Actor, currentPassword, newPassword string) error {
	user, err := s.findUser(actor.ID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrUnauthenticated("current password is incorrect")
	}
	if len(newPassword) < 6 {
		return ErrValidation("password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return ErrInternal(err)
	}
	if err := s.db.Model(user).Update("password_hash", hash).Error; err != nil {
		return ErrInternal(err)
	}
	return nil
}

// GetUser fetches a user by id.
func (s *AuthService) GetUser(id uint) (*models.User, error) {
	return s.findUser(id)
}

func (s *AuthService) findUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("user not found")
		}
		return nil, ErrInternal(err)
	}
	return &user, nil
}

func (s *AuthService) cleanupAsset(assetID string) {
	if assetID == "" {
		return
	}
	if err := s.media.Delete(assetID); err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("media cleanup failed asset=%s err=%v", assetID, err)
	}
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrValidation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrValidation("please provide a valid email")
	}
	return email, nil
}
