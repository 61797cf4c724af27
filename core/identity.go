package core

import (
	"errors"

	"gorm.io/gorm"

	"taskboard/models"
)

// IdentityStore owns the user collection and the affiliation field on it.
// Multi-entity transitions never originate here; the group registry drives
// them through the coordinator and calls back in with its transaction.
type IdentityStore struct {
	DB *gorm.DB
}

func NewIdentityStore(db *gorm.DB) *IdentityStore {
	return &IdentityStore{DB: db}
}

// SetAffiliation updates exactly the named user's affiliation. A nil
// groupID clears it.
func (is *IdentityStore) SetAffiliation(tx *gorm.DB, userID uint, groupID *uint) error {
	if tx == nil {
		tx = is.DB
	}
	res := tx.Model(&models.User{}).Where("id = ?", userID).Update("group_id", groupID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAffiliation returns the user's current group reference, or nil when
// the user is unaffiliated.
func (is *IdentityStore) GetAffiliation(userID uint) (*uint, error) {
	var user models.User
	if err := is.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user.GroupID, nil
}

// GetUser loads a user record, ErrNotFound when absent.
func (is *IdentityStore) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := is.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListAvailable returns users with no current affiliation, the candidate
// pool for group creation and add-members.
func (is *IdentityStore) ListAvailable() ([]models.User, error) {
	var users []models.User
	if err := is.DB.Where("group_id IS NULL").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
