package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/semitha-uni-west/google-beet/internal/adapters/auth"
	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/app/orch"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// API serves the meeting REST endpoints.
type API struct {
	Meetings *app.MeetingService
	Orch     *orch.Orchestrator
	Verifier *auth.Verifier
}

type sessionRequest struct {
	Token string `json:"token" binding:"required"`
}

type createMeetingRequest struct {
	Title string `json:"title" binding:"max=120"`
	Code  string `json:"code" binding:"omitempty,max=32"`
}

func (a *API) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := auth.StoreToken(c, a.Verifier, req.Token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

func (a *API) deleteSession(c *gin.Context) {
	if err := auth.ClearToken(c); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) me(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	c.JSON(http.StatusOK, id)
}

func (a *API) createMeeting(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := auth.IdentityFrom(c)
	m, err := a.Meetings.Create(c.Request.Context(), id, req.Title, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *API) getMeeting(c *gin.Context) {
	m, err := a.Meetings.Store.FindMeeting(c.Request.Context(), domain.MeetingID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (a *API) findByCode(c *gin.Context) {
	m, err := a.Meetings.FindActive(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (a *API) end(c *gin.Context, rawCode string) {
	id, _ := auth.IdentityFrom(c)
	m, err := a.Meetings.End(c.Request.Context(), rawCode, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if a.Orch != nil {
		a.Orch.EndMeeting(c.Request.Context(), m.Code)
	}
	c.Status(http.StatusNoContent)
}

func (a *API) endByCode(c *gin.Context) {
	a.end(c, c.Param("code"))
}

func (a *API) endByID(c *gin.Context) {
	m, err := a.Meetings.Store.FindMeeting(c.Request.Context(), domain.MeetingID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	a.end(c, string(m.Code))
}

func (a *API) join(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	meetingID := domain.MeetingID(c.Param("id"))
	joined, err := a.Meetings.Join(c.Request.Context(), meetingID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !joined {
		writeError(c, domain.ErrConflict)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meeting_id": meetingID, "user_id": id.ID, "joined": true})
}

func (a *API) leave(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)
	if err := a.Meetings.Leave(c.Request.Context(), domain.MeetingID(c.Param("id")), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) rooms(c *gin.Context) {
	if a.Orch == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, a.Orch.Rooms.List())
}
