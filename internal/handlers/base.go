package handlers

import (
	"errors"
	"net/http"

	"quill/internal/logger"
	"quill/internal/middleware"
	"quill/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Template names registered by router.LoadTemplates.
const (
	tmplBoard = "board.html"
	tmplError = "error.html"
	tmplList  = "fragments/list.html"
	tmplForm  = "fragments/form.html"
	tmplVotes = "fragments/votes.html"
	tmplShare = "fragments/share.html"
)

// Render helper to inject common variables like flashes and the path.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	session := sessions.Default(c)
	if flashes := session.Flashes(); len(flashes) > 0 {
		obj["Flashes"] = flashes
		if err := session.Save(); err != nil {
			logger.Warn("save flashes failed", zap.Error(err))
		}
	}

	obj["CurrentPath"] = c.Request.URL.Path
	c.HTML(code, name, obj)
}

// HTMX Redirect helper
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

// RenderError shows the error page, or just the message for HTMX requests
// so it can be swapped into a banner.
func RenderError(c *gin.Context, code int, message string) {
	if isHTMX(c) {
		c.Header("HX-Retarget", "#flash")
		c.Header("HX-Reswap", "innerHTML")
		c.String(code, message)
		return
	}
	Render(c, code, tmplError, gin.H{"Error": message})
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// addFlash queues a warning for the next full page render.
func addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		logger.Warn("save flash failed", zap.Error(err))
	}
}

// warningFor describes a non-fatal error for the user.
func warningFor(err error) string {
	switch {
	case errors.Is(err, services.ErrStorageWrite):
		return "Saved in memory, but writing to storage failed. Changes may be lost on restart."
	case errors.Is(err, services.ErrClipboard):
		return "Could not copy automatically. Copy the link manually."
	}
	return ""
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEncoding), errors.Is(err, services.ErrInvalidVote):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func msg(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrNotFound):
		return "Post not found."
	case errors.Is(err, services.ErrEncoding):
		return "Could not read the attached image: " + err.Error()
	}
	return "Something went wrong."
}

// boardData is the template payload for the board and its fragments.
func boardData(sess *services.Session) gin.H {
	return gin.H{"View": sess.View()}
}

// renderBoardBody answers HTMX requests with the list fragment and plain
// requests with a redirect back to the board.
func renderBoardBody(c *gin.Context) {
	if !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	sess := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, tmplList, boardData(sess))
}

// formOrQuery reads key from the body and falls back to the query string;
// htmx sends DELETE parameters in the URL.
func formOrQuery(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return v
	}
	return c.Query(key)
}
