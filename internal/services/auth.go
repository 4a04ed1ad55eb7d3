package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/tasktrace/tasktrace/internal/config"
	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/internal/utils"
	"github.com/tasktrace/tasktrace/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

type RefreshResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
}

// Register creates a local account. Email addresses are unique.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}
	if count > 0 {
		return nil, response.NewConflict("an account with this email already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("an account with this email already exists")
		}
		return nil, response.NewDatabaseError(err.Error())
	}
	return &user, nil
}

// Login verifies credentials and issues a JWT plus a rotating refresh token.
// Failures never reveal whether the email exists.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, response.NewDatabaseError(err.Error())
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	accessHours := s.jwtConfig.ExpireHour
	token, err := utils.GenerateToken(user.ID, user.Email, user.Name, accessHours)
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	refreshExpireAt := time.Now().Add(time.Duration(s.refreshExpireHours()) * time.Hour)
	record := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            &user,
	}, nil
}

// Refresh rotates a refresh token: the old one is revoked and linked to
// its replacement inside a single transaction.
func (s *AuthService) Refresh(refreshToken, clientIP, userAgent string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, response.NewUnauthorized("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, response.NewDatabaseError(err.Error())
	}

	if stored.RevokedAt != nil {
		return nil, response.NewUnauthorized("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, response.NewUnauthorized("refresh token expired")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("user not found")
		}
		return nil, response.NewDatabaseError(err.Error())
	}

	accessHours := s.jwtConfig.ExpireHour
	newAccessToken, err := utils.GenerateToken(user.ID, user.Email, user.Name, accessHours)
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	now := time.Now()
	newRecord := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   newRefreshHash,
		ExpiresAt:   now.Add(time.Duration(s.refreshExpireHours()) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRecord).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           now,
			"replaced_by_token_id": newRecord.ID,
		}).Error
	}); err != nil {
		return nil, response.NewDatabaseError(err.Error())
	}

	return &RefreshResult{
		AccessToken:     newAccessToken,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRecord.ExpiresAt,
	}, nil
}

func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)
	now := time.Now()
	if err := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now).Error; err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if !utils.CheckPassword(req.OldPassword, user.PasswordHash) {
		return response.NewUnauthorized("incorrect old password")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return response.NewDatabaseError(err.Error())
	}

	user.PasswordHash = hash
	if err := s.db.Save(&user).Error; err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}

func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, response.NewDatabaseError(err.Error())
	}
	return &user, nil
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (s *AuthService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}
	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, response.NewDatabaseError(err.Error())
		}
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own: their projects
// with all scoped records, their memberships and requests elsewhere, and
// their refresh tokens.
func (s *AuthService) DeleteAccount(userID uint) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var owned []models.Project
		if err := tx.Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
			return err
		}
		for _, project := range owned {
			for _, model := range []interface{}{
				&models.Task{}, &models.Member{},
				&models.InvitationCode{}, &models.MembershipRequest{},
			} {
				if err := tx.Where("project_id = ?", project.ID).Delete(model).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&project).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.MembershipRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		// Hard delete so the email's unique index frees up for re-registration
		return tx.Unscoped().Delete(user).Error
	})
	if err != nil {
		return response.NewDatabaseError(err.Error())
	}
	return nil
}

func (s *AuthService) refreshExpireHours() int {
	if s.jwtConfig.RefreshExpireHour <= 0 {
		return 720
	}
	return s.jwtConfig.RefreshExpireHour
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
