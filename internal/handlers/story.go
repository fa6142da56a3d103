package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"quill/internal/logger"
	"quill/internal/middleware"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoryHandler serves the board page and post editing.
type StoryHandler struct{}

func NewStoryHandler() *StoryHandler {
	return &StoryHandler{}
}

// Index renders the whole board for the current session.
func (h *StoryHandler) Index(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	Render(c, http.StatusOK, tmplBoard, boardData(sess))
}

// List returns the list fragment as it stands.
func (h *StoryHandler) List(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, tmplList, boardData(sess))
}

// More is the scroll trigger behind the load-more sentinel.
func (h *StoryHandler) More(c *gin.Context) {
	middleware.CurrentSession(c).LoadMore()
	renderBoardBody(c)
}

func (h *StoryHandler) Search(c *gin.Context) {
	middleware.CurrentSession(c).Search(c.PostForm("q"))
	renderBoardBody(c)
}

// Reveal opens a shared deep link: it makes the post visible in this
// session and sends the browser to its anchor.
func (h *StoryHandler) Reveal(c *gin.Context) {
	id := c.Param("id")
	sess := middleware.CurrentSession(c)
	if !sess.Reveal(id) {
		RenderError(c, http.StatusNotFound, msg(services.ErrNotFound))
		return
	}
	if !isHTMX(c) {
		c.Redirect(http.StatusFound, "/#post-"+id)
		return
	}
	view := sess.View()
	view.Highlight = id
	c.HTML(http.StatusOK, tmplList, gin.H{"View": view})
}

// Submit handles the compose form. It is a plain multipart POST that
// redirects to the saved post.
func (h *StoryHandler) Submit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	form := services.Form{
		ID:       c.PostForm("id"),
		Title:    c.PostForm("title"),
		Body:     c.PostForm("body"),
		Tags:     c.PostForm("tags"),
		ImageURL: c.PostForm("image_url"),
	}

	fileHeader, err := c.FormFile("image")
	switch {
	case err == nil && fileHeader.Size > 0:
		file, openErr := fileHeader.Open()
		if openErr != nil {
			logger.Warn("open upload failed", zap.String("name", fileHeader.Filename), zap.Error(openErr))
			h.renderSubmitError(c, sess, services.ErrEncoding)
			return
		}
		defer file.Close()
		form.ImageFile = imageFile(fileHeader, file)
	case err != nil && !errors.Is(err, http.ErrMissingFile):
		logger.Debug("no usable upload", zap.Error(err))
	}

	post, err := sess.SubmitPost(c.Request.Context(), form)
	if err != nil && !services.IsWarning(err) {
		h.renderSubmitError(c, sess, err)
		return
	}
	if err != nil {
		addFlash(c, warningFor(err))
	}
	logger.Info("post saved", zap.String("id", post.ID), zap.Bool("edit", form.Editing()))

	if isHTMX(c) {
		HtmxRedirect(c, "/#post-"+post.ID)
		return
	}
	c.Redirect(http.StatusSeeOther, "/#post-"+post.ID)
}

func (h *StoryHandler) renderSubmitError(c *gin.Context, sess *services.Session, err error) {
	data := boardData(sess)
	data["Error"] = msg(err)
	Render(c, statusFor(err), tmplBoard, data)
}

func imageFile(h *multipart.FileHeader, f multipart.File) *services.ImageFile {
	return &services.ImageFile{
		Name:        h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        h.Size,
		Reader:      f,
	}
}

// ShowEdit swaps the compose form for a pre-filled edit form.
func (h *StoryHandler) ShowEdit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	form, err := sess.EditPost(c.Param("id"))
	if err != nil {
		RenderError(c, statusFor(err), msg(err))
		return
	}
	if !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, tmplForm, gin.H{"Form": form})
}

func (h *StoryHandler) CancelEdit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	sess.CancelEdit()
	if !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, tmplForm, gin.H{"Form": sess.Form()})
}

// Delete removes a post once the client confirmed with confirm=yes. The
// browser asks the question through hx-confirm.
func (h *StoryHandler) Delete(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	id := c.Param("id")
	confirmed := formOrQuery(c, "confirm") == "yes"

	deleted, err := sess.DeletePost(c.Request.Context(), id, services.ConfirmFunc(func(string) bool {
		return confirmed
	}))
	if err != nil && !services.IsWarning(err) {
		RenderError(c, statusFor(err), msg(err))
		return
	}
	if err != nil {
		c.Header("HX-Trigger", "storage-warning")
	}
	if deleted {
		logger.Info("post deleted", zap.String("id", id))
	}
	renderBoardBody(c)
}
