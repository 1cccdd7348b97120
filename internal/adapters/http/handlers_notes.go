package http

import (
	nethttp "net/http"
	"strconv"

	"github.com/dkeye/StudyHub/internal/app/rooms"
	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type noteRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Content     string   `json:"content" binding:"required"`
	Attachments []string `json:"attachments" binding:"omitempty,dive,url"`
}

type updateNoteRequest struct {
	Title       string   `json:"title" binding:"omitempty,max=200"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments" binding:"omitempty,dive,url"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

func noteParam(c *gin.Context) domain.NoteID {
	return domain.NoteID(c.Param("noteId"))
}

func pageQuery(c *gin.Context, def int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	return page, limit
}

func (h *Handlers) notes(c *gin.Context) {
	page, limit := pageQuery(c, domain.DefaultNotesLimit)
	res, err := h.Rooms.Notes(c.Request.Context(), caller(c).ID, roomParam(c), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"notes": lo.Map(res.Notes, func(n *domain.Note, _ int) noteResponse { return newNoteResponse(n) }),
		"total": res.Total,
		"page":  res.Page,
		"pages": res.Pages,
	})
}

func (h *Handlers) note(c *gin.Context) {
	n, err := h.Rooms.Note(c.Request.Context(), caller(c).ID, roomParam(c), noteParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newNoteResponse(n))
}

func (h *Handlers) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	n, err := h.Rooms.CreateNote(c.Request.Context(), caller(c).ID, roomParam(c), rooms.NoteInput{
		Title:       req.Title,
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, newNoteResponse(n))
}

func (h *Handlers) updateNote(c *gin.Context) {
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	n, err := h.Rooms.UpdateNote(c.Request.Context(), caller(c).ID, roomParam(c), noteParam(c), rooms.NoteInput{
		Title:       req.Title,
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, newNoteResponse(n))
}

func (h *Handlers) deleteNote(c *gin.Context) {
	if err := h.Rooms.DeleteNote(c.Request.Context(), caller(c).ID, roomParam(c), noteParam(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Note removed"})
}

func (h *Handlers) comments(c *gin.Context) {
	page, limit := pageQuery(c, domain.DefaultNotesLimit)
	res, err := h.Rooms.Comments(c.Request.Context(), caller(c).ID, roomParam(c), noteParam(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"comments": lo.Map(res.Comments, func(cm *domain.Comment, _ int) commentResponse { return newCommentResponse(cm) }),
		"total":    res.Total,
		"page":     res.Page,
		"pages":    res.Pages,
	})
}

func (h *Handlers) addComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	cm, err := h.Rooms.AddComment(c.Request.Context(), caller(c).ID, roomParam(c), noteParam(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, newCommentResponse(cm))
}

func (h *Handlers) deleteComment(c *gin.Context) {
	id := domain.CommentID(c.Param("commentId"))
	if err := h.Rooms.DeleteComment(c.Request.Context(), caller(c).ID, roomParam(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Comment removed"})
}
