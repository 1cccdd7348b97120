package http

import (
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/dkeye/StudyHub/internal/app/rooms"
	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/dkeye/StudyHub/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type createRoomRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Visibility  domain.Visibility `json:"visibility" binding:"omitempty,oneof=public private"`
}

type joinRoomRequest struct {
	Code string `json:"code" binding:"required"`
}

type updateRoomRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Visibility  *domain.Visibility `json:"visibility"`
}

type boardRequest struct {
	Data json.RawMessage `json:"data" binding:"required"`
}

func (h *Handlers) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	me := caller(c).ID
	room, err := h.Rooms.Create(c.Request.Context(), me, req.Name, req.Description, req.Visibility)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, newRoomResponse(room, me))
}

func (h *Handlers) joinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	me := caller(c).ID
	room, err := h.Rooms.JoinByCode(c.Request.Context(), me, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newRoomResponse(room, me))
}

func (h *Handlers) myRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	me := caller(c).ID
	res, err := h.Rooms.Mine(c.Request.Context(), me, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"rooms": newRoomResponses(res.Rooms, me),
		"total": res.Total,
		"page":  res.Page,
		"pages": res.Pages,
	})
}

func (h *Handlers) getRoom(c *gin.Context) {
	me := caller(c).ID
	room, err := h.Rooms.Get(c.Request.Context(), me, roomParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newRoomResponse(room, me))
}

func (h *Handlers) updateRoom(c *gin.Context) {
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	me := caller(c).ID
	room, err := h.Rooms.Update(c.Request.Context(), me, roomParam(c), rooms.Patch{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newRoomResponse(room, me))
}

func (h *Handlers) deleteRoom(c *gin.Context) {
	if err := h.Rooms.Delete(c.Request.Context(), caller(c).ID, roomParam(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Room removed"})
}

func (h *Handlers) regenerateCode(c *gin.Context) {
	code, err := h.Rooms.RegenerateCode(c.Request.Context(), caller(c).ID, roomParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"code": code})
}

// online lists the members currently connected to the room's live group.
func (h *Handlers) online(c *gin.Context) {
	id := roomParam(c)
	if err := h.Rooms.CheckMember(c.Request.Context(), caller(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	members := []core.MemberDTO{}
	if group, ok := h.Orch.Rooms.Get(id); ok {
		members = lo.UniqBy(group.MembersSnapshot(), func(m core.MemberDTO) domain.UserID { return m.ID })
	}
	c.JSON(nethttp.StatusOK, gin.H{"members": members})
}

func (h *Handlers) history(c *gin.Context) {
	var before time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respondInvalid(c, fmt.Errorf("before must be RFC3339: %w", err))
			return
		}
		before = t
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(domain.DefaultHistoryLimit)))

	entries, err := h.Rooms.History(c.Request.Context(), caller(c).ID, roomParam(c), before, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := lo.Map(entries, func(e rooms.Entry, _ int) protocol.MessageNew {
		return protocol.NewMessageNew(e.Message, e.Author)
	})
	c.JSON(nethttp.StatusOK, out)
}

func (h *Handlers) video(c *gin.Context) {
	v, err := h.Rooms.Video(c.Request.Context(), caller(c).ID, roomParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if v == nil {
		c.JSON(nethttp.StatusOK, gin.H{})
		return
	}
	c.JSON(nethttp.StatusOK, videoResponse{
		URL:       v.URL,
		Position:  v.Position,
		Playing:   v.Playing,
		UpdatedBy: v.UpdatedBy,
		UpdatedAt: v.UpdatedAt,
	})
}

func (h *Handlers) board(c *gin.Context) {
	data, err := h.Rooms.Board(c.Request.Context(), caller(c).ID, roomParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"data": data})
}

func (h *Handlers) saveBoard(c *gin.Context) {
	var req boardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	if err := h.Rooms.SaveBoard(c.Request.Context(), caller(c).ID, roomParam(c), req.Data); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"ok": true})
}
