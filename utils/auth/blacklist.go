package auth

import (
	"context"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"gorm.io/gorm"
)

// BlacklistService handles JWT token revocation
type BlacklistService struct {
	db *gorm.DB
}

// NewBlacklistService creates a new blacklist service
func NewBlacklistService(db *gorm.DB) *BlacklistService {
	return &BlacklistService{db: db}
}

// RevokeToken adds a token to the blacklist
func (s *BlacklistService) RevokeToken(ctx context.Context, jti string, subjectID uint, role model.Role, expiresAt time.Time, reason string) error {
	blacklistEntry := model.JWTTokenBlacklist{
		Token:     jti,
		SubjectID: subjectID,
		Role:      role,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}

	return s.db.WithContext(ctx).Create(&blacklistEntry).Error
}

// IsTokenRevoked checks if a token is in the blacklist
func (s *BlacklistService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.JWTTokenBlacklist{}).
		Where("token = ? AND expires_at > ?", jti, time.Now()).
		Count(&count).
		Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// RevokeAllTokens increments the principal's token version to invalidate all tokens
func (s *BlacklistService) RevokeAllTokens(ctx context.Context, subjectID uint, role model.Role) error {
	return s.db.WithContext(ctx).
		Model(principalModel(role)).
		Where("id = ?", subjectID).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1)).
		Error
}

// CleanupExpiredTokens removes expired entries from the blacklist
func (s *BlacklistService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	return result.RowsAffected, result.Error
}

// GetTokenVersion returns the current token version for a principal
func (s *BlacklistService) GetTokenVersion(ctx context.Context, subjectID uint, role model.Role) (int, error) {
	var version int
	err := s.db.WithContext(ctx).
		Model(principalModel(role)).
		Select("token_version").
		Where("id = ?", subjectID).
		Take(&version).
		Error
	return version, err
}

// colleges live in their own table; students and admins share users
func principalModel(role model.Role) interface{} {
	if role == model.RoleCollege {
		return &model.College{}
	}
	return &model.User{}
}
