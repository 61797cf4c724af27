package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskboard/core"
	"taskboard/models"
	"taskboard/utils"
)

type TaskController struct {
	Ledger   *core.TaskLedger
	Registry *core.GroupRegistry
	Logger   *log.Logger
}

func NewTaskController(ledger *core.TaskLedger, registry *core.GroupRegistry, logger *log.Logger) *TaskController {
	return &TaskController{
		Ledger:   ledger,
		Registry: registry,
		Logger:   logger,
	}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *uint      `json:"assigned_to"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *uint      `json:"assigned_to"`
}

// TaskView is the wire shape for tasks: creator and assignee are resolved
// to summaries instead of full user records.
type TaskView struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	DueDate     *time.Time          `json:"due_date"`
	GroupID     uint                `json:"group_id"`
	CreatedBy   *models.UserSummary `json:"created_by"`
	AssignedTo  *models.UserSummary `json:"assigned_to"`
	Attachments []string            `json:"attachments"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func taskView(t *models.Task) TaskView {
	view := TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		GroupID:     t.GroupID,
		Attachments: t.Attachments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if view.Attachments == nil {
		view.Attachments = []string{}
	}
	if t.Creator != nil {
		s := t.Creator.Summary()
		view.CreatedBy = &s
	}
	if t.Assignee != nil {
		s := t.Assignee.Summary()
		view.AssignedTo = &s
	}
	return view
}

// GetTasks lists the tasks of the authenticated user's group
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	tasks, err := tc.Ledger.ListTasksForGroup(user.ID)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, taskView(&tasks[i]))
	}
	return c.JSON(views)
}

// CreateTask creates a task in the authenticated user's group
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	task, err := tc.Ledger.CreateTask(user.ID, core.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return coreErrorResponse(c, err)
	}

	tc.notifyAssignee(task)
	return c.Status(fiber.StatusCreated).JSON(taskView(task))
}

// GetTask returns task details, scoped to the caller's group
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task id",
		})
	}

	task, err := tc.Ledger.GetTask(uint(taskID))
	if err != nil {
		return coreErrorResponse(c, err)
	}
	if user.GroupID == nil || *user.GroupID != task.GroupID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Task belongs to another group",
		})
	}

	return c.JSON(taskView(task))
}

// UpdateTask applies a partial update to a task
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task id",
		})
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	task, err := tc.Ledger.UpdateTask(uint(taskID), core.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return coreErrorResponse(c, err)
	}

	if req.AssignedTo != nil {
		tc.notifyAssignee(task)
	}
	return c.JSON(taskView(task))
}

// DeleteTask removes a task permanently
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task id",
		})
	}

	if err := tc.Ledger.DeleteTask(uint(taskID)); err != nil {
		return coreErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
	})
}

// UploadAttachment stores an uploaded file and appends its reference to the
// task's attachment list
func (tc *TaskController) UploadAttachment(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task id",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	ref, err := utils.StoreFile(fileHeader.Filename, file)
	if err != nil {
		utils.LogError("attachment_store_failed", err, map[string]interface{}{
			"task_id":  taskID,
			"filename": fileHeader.Filename,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store file",
		})
	}

	task, err := tc.Ledger.AddAttachment(uint(taskID), ref)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	tc.Logger.Printf("Attachment %s added to task %d", ref, task.ID)
	return c.JSON(fiber.Map{
		"file_path":   ref,
		"attachments": task.Attachments,
	})
}

// notifyAssignee sends the assignment email best-effort; delivery problems
// are logged, never surfaced to the caller.
func (tc *TaskController) notifyAssignee(task *models.Task) {
	if task.Assignee == nil {
		return
	}
	groupName := ""
	if group, err := tc.Registry.GetGroup(task.GroupID); err == nil {
		groupName = group.Name
	}
	email := task.Assignee.Email
	title := task.Title
	due := task.DueDate
	go func() {
		if err := utils.SendTaskAssignedEmail(email, title, groupName, due); err != nil {
			utils.LogError("assignment_email_failed", err, map[string]interface{}{
				"task_id":  task.ID,
				"assignee": email,
			})
		}
	}()
}
