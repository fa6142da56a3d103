package handlers

import (
	"strings"

	"quill/internal/middleware"

	"github.com/gin-gonic/gin"
)

type TagHandler struct{}

func NewTagHandler() *TagHandler {
	return &TagHandler{}
}

// Filter narrows the list to posts carrying the tag. Tags are free text,
// so the name is a catch-all and may contain slashes.
func (h *TagHandler) Filter(c *gin.Context) {
	middleware.CurrentSession(c).FilterByTag(strings.TrimPrefix(c.Param("name"), "/"))
	renderBoardBody(c)
}

// Clear drops the tag filter.
func (h *TagHandler) Clear(c *gin.Context) {
	middleware.CurrentSession(c).FilterByTag("")
	renderBoardBody(c)
}
