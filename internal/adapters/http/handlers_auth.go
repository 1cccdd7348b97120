package http

import (
	"context"
	nethttp "net/http"

	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty,max=64"`
	Email string `json:"email" binding:"omitempty,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	u, token, err := h.Auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Mailer != nil {
		mail := notify.WelcomeMail(u.Email, u.Name)
		ctx := context.WithoutCancel(c.Request.Context())
		go func() { _ = h.Mailer.Send(ctx, mail) }()
	}
	c.JSON(nethttp.StatusCreated, newUserResponse(u, token))
}

func (h *Handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	u, token, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newUserResponse(u, token))
}

func (h *Handlers) profile(c *gin.Context) {
	u, err := h.Auth.User(c.Request.Context(), caller(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newUserResponse(u, ""))
}

// forgotPassword answers the same way whether or not the email is known.
func (h *Handlers) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	u, token, err := h.Auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if u != nil && h.Mailer != nil {
		mail := notify.PasswordResetMail(u.Email, u.Name, h.ClientURL, token)
		ctx := context.WithoutCancel(c.Request.Context())
		go func() { _ = h.Mailer.Send(ctx, mail) }()
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

func (h *Handlers) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	u, token, err := h.Auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newUserResponse(u, token))
}

func (h *Handlers) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	u, err := h.Auth.UpdateProfile(c.Request.Context(), caller(c).ID, req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newUserResponse(u, ""))
}

func (h *Handlers) hubStats(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{
		"sessions": h.Orch.Registry.Count(),
		"rooms":    h.Orch.Rooms.List(),
	})
}
