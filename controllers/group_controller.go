package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"taskboard/core"
	"taskboard/models"
)

type GroupController struct {
	Registry *core.GroupRegistry
	Logger   *log.Logger
}

func NewGroupController(registry *core.GroupRegistry, logger *log.Logger) *GroupController {
	return &GroupController{
		Registry: registry,
		Logger:   logger,
	}
}

type CreateGroupRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	MemberIDs []uint `json:"member_ids" validate:"required,min=1"`
}

type UpdateGroupRequest struct {
	Name          string `json:"name"`
	AddMembers    []uint `json:"add_members"`
	RemoveMembers []uint `json:"remove_members"`
}

// CreateGroup creates a group and assigns every listed member to it
func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	group, err := gc.Registry.CreateGroup(req.Name, req.MemberIDs)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	gc.Logger.Printf("Group %q created with %d members", group.Name, len(group.Members))
	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetGroups lists all groups with their members
func (gc *GroupController) GetGroups(c *fiber.Ctx) error {
	groups, err := gc.Registry.ListGroups()
	if err != nil {
		return coreErrorResponse(c, err)
	}
	return c.JSON(groups)
}

// GetGroup returns group details
func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group id",
		})
	}

	group, err := gc.Registry.GetGroup(uint(groupID))
	if err != nil {
		return coreErrorResponse(c, err)
	}
	return c.JSON(group)
}

// GetGroupMembers returns the group's member list
func (gc *GroupController) GetGroupMembers(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group id",
		})
	}

	members, err := gc.Registry.GetMembers(uint(groupID))
	if err != nil {
		return coreErrorResponse(c, err)
	}

	summaries := make([]models.UserSummary, 0, len(members))
	for i := range members {
		summaries = append(summaries, members[i].Summary())
	}
	return c.JSON(summaries)
}

// UpdateGroup renames and/or changes membership. Requested additions that
// were already in a group come back under skipped_members; if the update
// emptied the group the response reports the deletion instead of state.
func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group id",
		})
	}

	var req UpdateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := gc.Registry.UpdateGroup(uint(groupID), core.GroupUpdate{
		Name:          req.Name,
		AddMembers:    req.AddMembers,
		RemoveMembers: req.RemoveMembers,
	})
	if err != nil {
		return coreErrorResponse(c, err)
	}

	if result.Deleted {
		return c.JSON(fiber.Map{
			"message": "Group has been deleted as it has no members",
			"deleted": true,
		})
	}

	return c.JSON(fiber.Map{
		"group":           result.Group,
		"deleted":         false,
		"skipped_members": result.SkippedMembers,
	})
}

// JoinGroup adds the authenticated user to the group
func (gc *GroupController) JoinGroup(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group id",
		})
	}

	if err := gc.Registry.JoinGroup(uint(groupID), user.ID); err != nil {
		return coreErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Successfully joined the group",
	})
}

// LeaveGroup removes the authenticated user from their current group
func (gc *GroupController) LeaveGroup(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	dissolved, err := gc.Registry.LeaveGroup(user.ID)
	if err != nil {
		return coreErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message":   "You have left the group",
		"dissolved": dissolved,
	})
}
