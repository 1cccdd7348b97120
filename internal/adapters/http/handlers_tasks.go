package http

import (
	nethttp "net/http"
	"time"

	"github.com/dkeye/StudyHub/internal/app/rooms"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type createTaskRequest struct {
	Title       string        `json:"title" binding:"required,max=200"`
	Description string        `json:"description"`
	AssigneeID  domain.UserID `json:"assigneeId"`
	DueAt       *time.Time    `json:"dueAt"`
}

type updateTaskRequest struct {
	Title       *string            `json:"title" binding:"omitempty,max=200"`
	Description *string            `json:"description"`
	Status      *domain.TaskStatus `json:"status"`
	AssigneeID  *domain.UserID     `json:"assigneeId"`
	DueAt       *time.Time         `json:"dueAt"`
}

func taskParam(c *gin.Context) domain.TaskID {
	return domain.TaskID(c.Param("taskId"))
}

func (h *Handlers) tasks(c *gin.Context) {
	list, err := h.Rooms.Tasks(c.Request.Context(), caller(c).ID, roomParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, lo.Map(list, func(t *domain.Task, _ int) taskResponse { return newTaskResponse(t) }))
}

func (h *Handlers) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	task, err := h.Rooms.CreateTask(c.Request.Context(), caller(c).ID, roomParam(c), rooms.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueAt:       req.DueAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, newTaskResponse(task))
}

func (h *Handlers) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	task, err := h.Rooms.UpdateTask(c.Request.Context(), caller(c).ID, roomParam(c), taskParam(c), rooms.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		DueAt:       req.DueAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newTaskResponse(task))
}

func (h *Handlers) deleteTask(c *gin.Context) {
	if err := h.Rooms.DeleteTask(c.Request.Context(), caller(c).ID, roomParam(c), taskParam(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Task removed"})
}
