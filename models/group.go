package models

import (
	"gorm.io/gorm"
)

// Group is a named set of members. Membership is recorded on the user side
// (users.group_id); Members is the has-many view over it. A group with no
// members is deleted in the same transaction that removed the last one.
type Group struct {
	gorm.Model

	Name    string `gorm:"not null" json:"name"`
	Members []User `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}
