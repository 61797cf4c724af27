package models

import (
	"gorm.io/gorm"
)

// User represents a registered account. A user belongs to at most one group
// at a time; GroupID is nil while unaffiliated.
type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Current group affiliation. Cleared when the user leaves or the group
	// dissolves; must never name a group the user is not a member of.
	GroupID *uint  `gorm:"index" json:"group_id"`
	Group   *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// UserSummary is the projection embedded in task and member listings.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
