package handlers

import (
	"context"
	"net/http"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

func (h *VoteHandler) Upvote(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	h.vote(c, sess, sess.Upvote)
}

func (h *VoteHandler) Downvote(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	h.vote(c, sess, sess.Downvote)
}

// vote answers with the refreshed vote widget for the post.
func (h *VoteHandler) vote(c *gin.Context, sess *services.Session, apply func(context.Context, string) (models.Post, error)) {
	post, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil && !services.IsWarning(err) {
		RenderError(c, statusFor(err), msg(err))
		return
	}
	data := gin.H{"Post": post, "Stance": sess.Stance(post.ID).String()}
	if err != nil {
		data["Warning"] = warningFor(err)
	}
	c.HTML(http.StatusOK, tmplVotes, data)
}

// Share returns the deep link. Copying happens in the browser; the
// fragment falls back to a manual-copy prompt when that fails.
func (h *VoteHandler) Share(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	id := c.Param("id")
	link, err := sess.Share(c.Request.Context(), id)
	if err != nil && !services.IsWarning(err) {
		RenderError(c, statusFor(err), msg(err))
		return
	}
	if !isHTMX(c) {
		c.String(http.StatusOK, link)
		return
	}
	c.HTML(http.StatusOK, tmplShare, gin.H{"ID": id, "Link": link, "Warning": warningFor(err)})
}
