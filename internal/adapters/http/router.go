package http

import (
	"context"

	"github.com/dkeye/StudyHub/internal/adapters/signal"
	"github.com/dkeye/StudyHub/internal/app/orch"
	"github.com/dkeye/StudyHub/internal/app/rooms"
	"github.com/dkeye/StudyHub/internal/auth"
	"github.com/dkeye/StudyHub/internal/config"
	"github.com/dkeye/StudyHub/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handlers serves the REST surface.
type Handlers struct {
	Auth   *auth.Service
	Rooms  *rooms.Service
	Orch   *orch.Orchestrator
	Mailer notify.Mailer
	// ClientURL prefixes links sent by mail.
	ClientURL string
}

func SetupRouter(ctx context.Context, cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ws := signal.NewSignalWSController(h.Orch, cfg.WS)
	r.GET("/ws/rooms", func(c *gin.Context) {
		ws.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	api.GET("/health", h.health)

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.POST("/auth/forgot-password", h.forgotPassword)
	api.POST("/auth/reset-password/:token", h.resetPassword)
	api.GET("/invitations/:token", h.invitationDetails)

	authed := api.Group("", BearerAuth(h.Auth))
	authed.GET("/auth/profile", h.profile)
	authed.PUT("/auth/profile", h.updateProfile)
	authed.GET("/hub/stats", h.hubStats)

	authed.POST("/rooms", h.createRoom)
	authed.POST("/rooms/join", h.joinRoom)
	authed.GET("/rooms/mine", h.myRooms)
	authed.GET("/rooms/:id", h.getRoom)
	authed.PATCH("/rooms/:id", h.updateRoom)
	authed.DELETE("/rooms/:id", h.deleteRoom)
	authed.POST("/rooms/:id/invite/regenerate", h.regenerateCode)
	authed.GET("/rooms/:id/online", h.online)

	authed.GET("/rooms/:id/messages", h.history)
	authed.GET("/rooms/:id/videos", h.video)
	authed.GET("/rooms/:id/board", h.board)
	authed.PUT("/rooms/:id/board", h.saveBoard)

	authed.POST("/rooms/:id/invitations", h.invite)
	authed.GET("/rooms/:id/invitations/list", h.invitations)
	authed.POST("/rooms/:id/invitations/:invitationId/resend", h.resendInvitation)
	authed.POST("/invitations/:token/accept", h.acceptInvitation)

	authed.GET("/rooms/:id/tasks", h.tasks)
	authed.POST("/rooms/:id/tasks", h.createTask)
	authed.PATCH("/rooms/:id/tasks/:taskId", h.updateTask)
	authed.DELETE("/rooms/:id/tasks/:taskId", h.deleteTask)

	authed.GET("/rooms/:id/notes", h.notes)
	authed.POST("/rooms/:id/notes", h.createNote)
	authed.GET("/rooms/:id/notes/:noteId", h.note)
	authed.PUT("/rooms/:id/notes/:noteId", h.updateNote)
	authed.DELETE("/rooms/:id/notes/:noteId", h.deleteNote)
	authed.GET("/rooms/:id/notes/:noteId/comments", h.comments)
	authed.POST("/rooms/:id/notes/:noteId/comments", h.addComment)
	authed.DELETE("/rooms/:id/comments/:commentId", h.deleteComment)

	authed.GET("/rooms/:id/events", h.events)
	authed.POST("/rooms/:id/events", h.createEvent)
	authed.PATCH("/rooms/:id/events/:eventId", h.updateEvent)
	authed.DELETE("/rooms/:id/events/:eventId", h.deleteEvent)

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
