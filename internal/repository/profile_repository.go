package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/todolist-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrUpdateUserNames is returned when saving names fails inside the onboarding transaction.
	ErrUpdateUserNames = errors.New("profile repository: update user names failed")
	// ErrCreateProfile is returned when inserting the profile fails inside the onboarding transaction.
	ErrCreateProfile = errors.New("profile repository: create profile failed")
	// ErrProfileMissing is returned when a reputation increment matches no profile.
	ErrProfileMissing = errors.New("profile repository: profile not found")
)

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

// CreateWithNames stores the user's names and their new profile atomically.
func (r *GormProfileRepository) CreateWithNames(profile *models.Profile, firstName, lastName string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", profile.UserID).
			Updates(map[string]interface{}{
				"first_name": firstName,
				"last_name":  lastName,
			}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUpdateUserNames, err)
		}

		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProfile, err)
		}

		return nil
	})
}

// FindByUserID finds a profile with its team
func (r *GormProfileRepository) FindByUserID(userID uint64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Preload("Team").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// AddReputation increments a profile's reputation relative to its stored value
func (r *GormProfileRepository) AddReputation(userID, amount uint64) error {
	return incrementReputation(r.db, userID, amount)
}

// incrementReputation issues reputation = reputation + amount so concurrent
// rewards for the same user never overwrite each other.
func incrementReputation(db *gorm.DB, userID, amount uint64) error {
	result := db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileMissing
	}
	return nil
}
