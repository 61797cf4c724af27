package core

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"taskboard/models"
)

// GroupRegistry owns the group collection and drives every membership
// transition. Each mutation validates all of its preconditions before
// touching anything, then applies the member-set and affiliation changes in
// one transaction inside the coordinator's critical section.
type GroupRegistry struct {
	DB       *gorm.DB
	Identity *IdentityStore
	Coord    *Coordinator
	Logger   *log.Logger
}

func NewGroupRegistry(db *gorm.DB, identity *IdentityStore, coord *Coordinator, logger *log.Logger) *GroupRegistry {
	return &GroupRegistry{
		DB:       db,
		Identity: identity,
		Coord:    coord,
		Logger:   logger,
	}
}

// GroupUpdate carries the partial update for UpdateGroup. An empty Name
// means no rename.
type GroupUpdate struct {
	Name          string
	AddMembers    []uint
	RemoveMembers []uint
}

// GroupUpdateResult reports the outcome of UpdateGroup. When the update
// emptied the member set, Deleted is true and Group is nil. SkippedMembers
// lists requested additions that were already affiliated (or unknown) and
// were therefore left alone.
type GroupUpdateResult struct {
	Group          *models.Group
	Deleted        bool
	SkippedMembers []uint
}

// CreateGroup creates a group with the given initial members and sets every
// member's affiliation to it. The affiliation pre-check covers the whole
// candidate set before anything is written; a partially-applied create
// cannot occur.
func (gr *GroupRegistry) CreateGroup(name string, memberIDs []uint) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	memberIDs = dedupe(memberIDs)
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one initial member is required", ErrValidation)
	}

	var group models.Group
	err := gr.Coord.Atomically(func() error {
		return gr.DB.Transaction(func(tx *gorm.DB) error {
			var members []models.User
			if err := tx.Where("id IN ?", memberIDs).Find(&members).Error; err != nil {
				return err
			}
			if len(members) != len(memberIDs) {
				return fmt.Errorf("%w: one or more member ids do not exist", ErrNotFound)
			}
			for _, m := range members {
				if m.GroupID != nil {
					return fmt.Errorf("%w: user %d is already in a group", ErrConflict, m.ID)
				}
			}

			group = models.Group{Name: name}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			for _, m := range members {
				if err := gr.Identity.SetAffiliation(tx, m.ID, &group.ID); err != nil {
					return err
				}
			}
			return tx.Preload("Members").First(&group, group.ID).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// JoinGroup adds the user to the group's member set and sets the user's
// affiliation, as one step from the perspective of any reader.
func (gr *GroupRegistry) JoinGroup(groupID, userID uint) error {
	return gr.Coord.Atomically(func() error {
		return gr.DB.Transaction(func(tx *gorm.DB) error {
			var group models.Group
			if err := tx.First(&group, groupID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: group %d", ErrNotFound, groupID)
				}
				return err
			}
			var user models.User
			if err := tx.First(&user, userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: user %d", ErrNotFound, userID)
				}
				return err
			}
			if user.GroupID != nil {
				return fmt.Errorf("%w: user %d is already in a group", ErrConflict, userID)
			}
			return gr.Identity.SetAffiliation(tx, userID, &group.ID)
		})
	})
}

// LeaveGroup removes the user from their current group, clears the
// affiliation and, when the member set is now empty, deletes the group.
// The three effects are one logical unit. Returns whether the group was
// dissolved.
func (gr *GroupRegistry) LeaveGroup(userID uint) (bool, error) {
	dissolved := false
	err := gr.Coord.Atomically(func() error {
		return gr.DB.Transaction(func(tx *gorm.DB) error {
			var user models.User
			if err := tx.First(&user, userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: user %d", ErrNotFound, userID)
				}
				return err
			}
			if user.GroupID == nil {
				return fmt.Errorf("%w: user %d is not in a group", ErrInvalidState, userID)
			}
			var group models.Group
			if err := tx.First(&group, *user.GroupID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: group %d", ErrNotFound, *user.GroupID)
				}
				return err
			}
			if err := gr.Identity.SetAffiliation(tx, userID, nil); err != nil {
				return err
			}
			var remaining int64
			if err := tx.Model(&models.User{}).Where("group_id = ?", group.ID).Count(&remaining).Error; err != nil {
				return err
			}
			if remaining == 0 {
				if err := tx.Delete(&group).Error; err != nil {
					return err
				}
				dissolved = true
				gr.Logger.Printf("Group %q (id=%d) has been deleted as it has no members", group.Name, group.ID)
			}
			return nil
		})
	})
	return dissolved, err
}

// UpdateGroup applies a partial update: rename, add members, remove
// members. Additions only take users with no current affiliation; the rest
// are skipped and reported, not errored. Removals clear the listed users'
// affiliation regardless of current membership. When the member set is
// empty afterwards the group is deleted and the result says so instead of
// carrying group state.
func (gr *GroupRegistry) UpdateGroup(groupID uint, update GroupUpdate) (*GroupUpdateResult, error) {
	result := &GroupUpdateResult{}
	err := gr.Coord.Atomically(func() error {
		return gr.DB.Transaction(func(tx *gorm.DB) error {
			var group models.Group
			if err := tx.First(&group, groupID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: group %d", ErrNotFound, groupID)
				}
				return err
			}

			if update.Name != "" {
				if err := tx.Model(&group).Update("name", update.Name).Error; err != nil {
					return err
				}
			}

			if add := dedupe(update.AddMembers); len(add) > 0 {
				var joinable []models.User
				if err := tx.Where("id IN ? AND group_id IS NULL", add).Find(&joinable).Error; err != nil {
					return err
				}
				added := make(map[uint]bool, len(joinable))
				for _, u := range joinable {
					if err := gr.Identity.SetAffiliation(tx, u.ID, &group.ID); err != nil {
						return err
					}
					added[u.ID] = true
				}
				for _, id := range add {
					if !added[id] {
						result.SkippedMembers = append(result.SkippedMembers, id)
					}
				}
			}

			if remove := dedupe(update.RemoveMembers); len(remove) > 0 {
				if err := tx.Model(&models.User{}).Where("id IN ?", remove).Update("group_id", nil).Error; err != nil {
					return err
				}
			}

			var remaining int64
			if err := tx.Model(&models.User{}).Where("group_id = ?", group.ID).Count(&remaining).Error; err != nil {
				return err
			}
			if remaining == 0 {
				if err := tx.Delete(&group).Error; err != nil {
					return err
				}
				result.Deleted = true
				gr.Logger.Printf("Group %q (id=%d) has been deleted as it has no members", group.Name, group.ID)
				return nil
			}

			var updated models.Group
			if err := tx.Preload("Members").First(&updated, group.ID).Error; err != nil {
				return err
			}
			result.Group = &updated
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListGroups returns every group with its members preloaded.
func (gr *GroupRegistry) ListGroups() ([]models.Group, error) {
	var groups []models.Group
	if err := gr.DB.Preload("Members").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup returns one group with members, ErrNotFound when absent.
func (gr *GroupRegistry) GetGroup(groupID uint) (*models.Group, error) {
	var group models.Group
	if err := gr.DB.Preload("Members").First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
		}
		return nil, err
	}
	return &group, nil
}

// GetMembers returns the group's current member set.
func (gr *GroupRegistry) GetMembers(groupID uint) ([]models.User, error) {
	group, err := gr.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	return group.Members, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
