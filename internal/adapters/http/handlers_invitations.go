package http

import (
	nethttp "net/http"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,max=32"`
}

func (h *Handlers) invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	inv, err := h.Rooms.Invite(c.Request.Context(), caller(c).ID, roomParam(c), req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, newInvitationResponse(inv))
}

func (h *Handlers) invitations(c *gin.Context) {
	list, err := h.Rooms.Invitations(c.Request.Context(), caller(c).ID, roomParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, lo.Map(list, func(i *domain.Invitation, _ int) invitationResponse {
		return newInvitationResponse(i)
	}))
}

func (h *Handlers) resendInvitation(c *gin.Context) {
	id := domain.InvitationID(c.Param("invitationId"))
	inv, err := h.Rooms.Resend(c.Request.Context(), caller(c).ID, roomParam(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newInvitationResponse(inv))
}

func (h *Handlers) invitationDetails(c *gin.Context) {
	d, err := h.Rooms.Details(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"roomName":    d.RoomName,
		"inviterName": d.InviterName,
		"email":       d.Email,
		"role":        d.Role,
		"expiresAt":   d.ExpiresAt,
	})
}

func (h *Handlers) acceptInvitation(c *gin.Context) {
	roomID, err := h.Rooms.Accept(c.Request.Context(), caller(c).ID, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"roomId": roomID})
}
