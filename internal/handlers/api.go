package handlers

import (
	"net/http"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/services"
	"quill/internal/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler exposes read-only JSON views of the board.
type APIHandler struct {
	board *services.Board
}

func NewAPIHandler(board *services.Board) *APIHandler {
	return &APIHandler{board: board}
}

type postsResponse struct {
	Posts   []models.Post `json:"posts"`
	Total   int           `json:"total"`
	HasMore bool          `json:"hasMore"`
}

// Posts lists what the session would see. ?q= and ?tag= filter like the
// board does without changing the session; ?limit= overrides the window.
func (h *APIHandler) Posts(c *gin.Context) {
	q := middleware.CurrentSession(c).Query()
	if v, ok := c.GetQuery("q"); ok {
		q.SetSearch(v)
	}
	if v, ok := c.GetQuery("tag"); ok {
		q.SetTag(v)
	}
	if limit := utils.StringToInt(c.Query("limit"), 0); limit > 0 {
		q.VisibleCount = limit
	}

	res := services.Query(h.board.Posts(), q)
	c.JSON(http.StatusOK, postsResponse{Posts: res.Posts, Total: res.Total, HasMore: res.HasMore()})
}

// Tags lists the distinct tags of the whole collection.
func (h *APIHandler) Tags(c *gin.Context) {
	limit := utils.StringToInt(c.Query("limit"), services.TagListLimit)
	c.JSON(http.StatusOK, gin.H{"tags": services.TagList(h.board.Posts(), limit)})
}
