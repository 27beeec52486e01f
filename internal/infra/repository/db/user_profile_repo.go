package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shop/internal/domain/model"
	"gorm.io/gorm"
)

type UserProfileRepo struct {
	db *DbDao
}

func NewUserProfileRepo(db *DbDao) *UserProfileRepo {
	return &UserProfileRepo{db: db}
}

func (s *UserProfileRepo) CreateUserProfile(ctx context.Context, profile *model.UserProfile) error {
	return s.db.conn(ctx).Create(profile).Error
}

func (s *UserProfileRepo) GetUserProfileByID(ctx context.Context, id uint) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := s.db.conn(ctx).First(&profile, "user_profile_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrUserProfileNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

// DetachCart 解除使用者與購物車的關聯, 下次使用時由購物車服務建立新的
func (s *UserProfileRepo) DetachCart(ctx context.Context, userProfileID uint) error {
	result := s.db.conn(ctx).Model(&model.UserProfile{}).
		Where("user_profile_id = ?", userProfileID).
		Update("cart_id", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userProfileID, ErrUserProfileNotFound)
	}
	return nil
}
