package http

import (
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/dkeye/StudyHub/internal/app/rooms"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type createEventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"startAt" binding:"required"`
	EndAt       time.Time `json:"endAt" binding:"required,gtefield=StartAt"`
}

type updateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
}

func eventParam(c *gin.Context) domain.EventID {
	return domain.EventID(c.Param("eventId"))
}

// timeQuery parses an optional RFC3339 query parameter.
func timeQuery(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339: %w", key, err)
	}
	return t, nil
}

func (h *Handlers) events(c *gin.Context) {
	from, err := timeQuery(c, "from")
	if err != nil {
		respondInvalid(c, err)
		return
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		respondInvalid(c, err)
		return
	}
	list, err := h.Rooms.Events(c.Request.Context(), caller(c).ID, roomParam(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, lo.Map(list, func(e *domain.Event, _ int) eventResponse { return newEventResponse(e) }))
}

func (h *Handlers) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	e, err := h.Rooms.CreateEvent(c.Request.Context(), caller(c).ID, roomParam(c), rooms.EventInput{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, newEventResponse(e))
}

func (h *Handlers) updateEvent(c *gin.Context) {
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	e, err := h.Rooms.UpdateEvent(c.Request.Context(), caller(c).ID, roomParam(c), eventParam(c), rooms.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newEventResponse(e))
}

func (h *Handlers) deleteEvent(c *gin.Context) {
	if err := h.Rooms.DeleteEvent(c.Request.Context(), caller(c).ID, roomParam(c), eventParam(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Event removed"})
}
