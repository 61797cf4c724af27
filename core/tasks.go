package core

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"taskboard/models"
)

// TaskLedger owns the task collection. Tasks are scoped to the group the
// creator belonged to at creation time; they are not touched when that
// group later dissolves (FindOrphaned surfaces the leftovers).
type TaskLedger struct {
	DB       *gorm.DB
	Identity *IdentityStore
	Coord    *Coordinator
	Logger   *log.Logger
}

func NewTaskLedger(db *gorm.DB, identity *IdentityStore, coord *Coordinator, logger *log.Logger) *TaskLedger {
	return &TaskLedger{
		DB:       db,
		Identity: identity,
		Coord:    coord,
		Logger:   logger,
	}
}

// TaskInput carries the fields for CreateTask.
type TaskInput struct {
	Title       string
	Description string
	Status      string
	DueDate     *time.Time
	AssignedTo  *uint
}

// TaskUpdate carries the partial update for UpdateTask; nil fields are left
// unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
	AssignedTo  *uint
}

// CreateTask creates a task owned by the creator's current group. The
// affiliation read and the insert happen inside the membership section, so
// a racing LeaveGroup either sees the task's group still populated or this
// call fails with ErrInvalidState; whichever section runs first wins.
func (tl *TaskLedger) CreateTask(creatorID uint, input TaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Status == "" {
		input.Status = models.TaskStatusToDo
	} else if !models.IsValidTaskStatus(input.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, input.Status)
	}

	var task models.Task
	err := tl.Coord.Atomically(func() error {
		return tl.DB.Transaction(func(tx *gorm.DB) error {
			var creator models.User
			if err := tx.First(&creator, creatorID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: user %d", ErrNotFound, creatorID)
				}
				return err
			}
			if creator.GroupID == nil {
				return fmt.Errorf("%w: you must be part of a group to create a task", ErrInvalidState)
			}
			if input.AssignedTo != nil {
				var assignee models.User
				if err := tx.First(&assignee, *input.AssignedTo).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: assignee %d", ErrNotFound, *input.AssignedTo)
					}
					return err
				}
			}

			task = models.Task{
				Title:       input.Title,
				Description: input.Description,
				Status:      input.Status,
				DueDate:     input.DueDate,
				GroupID:     *creator.GroupID,
				CreatedBy:   creator.ID,
				AssignedTo:  input.AssignedTo,
				Attachments: []string{},
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
			return tx.Preload("Creator").Preload("Assignee").First(&task, task.ID).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasksForGroup returns every task owned by the caller's group, with
// creator and assignee resolved.
func (tl *TaskLedger) ListTasksForGroup(userID uint) ([]models.Task, error) {
	user, err := tl.Identity.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user.GroupID == nil {
		return nil, fmt.Errorf("%w: you are not part of any group", ErrForbidden)
	}
	var tasks []models.Task
	if err := tl.DB.Preload("Creator").Preload("Assignee").
		Where("group_id = ?", *user.GroupID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns one task with creator and assignee resolved.
func (tl *TaskLedger) GetTask(taskID uint) (*models.Task, error) {
	var task models.Task
	if err := tl.DB.Preload("Creator").Preload("Assignee").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to the mutable fields. A bad status
// fails before anything is written.
func (tl *TaskLedger) UpdateTask(taskID uint, update TaskUpdate) (*models.Task, error) {
	if update.Status != nil && !models.IsValidTaskStatus(*update.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *update.Status)
	}

	var task models.Task
	if err := tl.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = *update.Title
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Status != nil {
		changes["status"] = *update.Status
	}
	if update.DueDate != nil {
		changes["due_date"] = *update.DueDate
	}
	if update.AssignedTo != nil {
		var assignee models.User
		if err := tl.DB.First(&assignee, *update.AssignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: assignee %d", ErrNotFound, *update.AssignedTo)
			}
			return nil, err
		}
		changes["assigned_to"] = *update.AssignedTo
	}
	if len(changes) > 0 {
		if err := tl.DB.Model(&task).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	if err := tl.DB.Preload("Creator").Preload("Assignee").First(&task, task.ID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes the task permanently.
func (tl *TaskLedger) DeleteTask(taskID uint) error {
	res := tl.DB.Delete(&models.Task{}, taskID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	return nil
}

// AddAttachment appends an opaque blob-store reference to the task. The
// sequence is append-only; references are persisted verbatim and never
// interpreted.
func (tl *TaskLedger) AddAttachment(taskID uint, ref string) (*models.Task, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: attachment reference is required", ErrValidation)
	}
	var task models.Task
	if err := tl.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	task.Attachments = append(task.Attachments, ref)
	if err := tl.DB.Model(&task).Update("attachments", task.Attachments).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindOrphaned returns tasks whose owning group no longer exists. Group
// dissolution never cascades into the ledger, so these accumulate until
// someone acts on them.
func (tl *TaskLedger) FindOrphaned() ([]models.Task, error) {
	var tasks []models.Task
	sub := tl.DB.Model(&models.Group{}).Select("id")
	if err := tl.DB.Where("group_id NOT IN (?)", sub).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
