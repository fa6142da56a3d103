package router

import (
	"quill/internal/config"
	"quill/internal/handlers"
	"quill/internal/logger"
	"quill/internal/middleware"
	"quill/internal/services"
	"quill/internal/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionCookie = "quill_session"

// webClipboard stands in for the clipboard on the server. Browsers copy
// the link themselves, so issuing it is all that happens here.
var webClipboard = services.ClipboardFunc(func(link string) error {
	logger.Debug("share link issued", zap.String("link", link))
	return nil
})

// Setup builds the engine: middleware, templates and routes.
func Setup(cfg *config.Config, board *services.Board) (*gin.Engine, error) {
	registry, err := services.NewRegistry(board, webClipboard, cfg.SessionCacheSize)
	if err != nil {
		return nil, err
	}
	bodies, err := utils.NewBodyRenderer(cfg.RenderMarkdown, 1024)
	if err != nil {
		return nil, err
	}
	render, err := LoadTemplates(cfg.TemplatesDir, FuncMap(bodies))
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions(sessionCookie, store))
	r.Use(middleware.LoadSession(registry))

	r.HTMLRender = render

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	RegisterRoutes(r, board, limiter.Middleware())
	return r, nil
}

// RegisterRoutes mounts every route. limit guards the mutating ones.
func RegisterRoutes(r *gin.Engine, board *services.Board, limit gin.HandlerFunc) {
	storyHandler := handlers.NewStoryHandler()
	tagHandler := handlers.NewTagHandler()
	voteHandler := handlers.NewVoteHandler()
	apiHandler := handlers.NewAPIHandler(board)

	// Board and list
	r.GET("/", storyHandler.Index)
	r.GET("/posts", storyHandler.List)
	r.POST("/search", storyHandler.Search)
	r.POST("/more", storyHandler.More)
	r.GET("/tag", tagHandler.Clear)
	r.GET("/tag/*name", tagHandler.Filter)
	r.GET("/p/:id", storyHandler.Reveal)
	r.GET("/p/:id/edit", storyHandler.ShowEdit)
	r.POST("/edit/cancel", storyHandler.CancelEdit)

	// Mutations
	mutating := r.Group("/")
	mutating.Use(limit)
	{
		mutating.POST("/submit", storyHandler.Submit)
		mutating.DELETE("/p/:id", storyHandler.Delete)
		mutating.POST("/vote/:id/up", voteHandler.Upvote)
		mutating.POST("/vote/:id/down", voteHandler.Downvote)
		mutating.POST("/share/:id", voteHandler.Share)
	}

	api := r.Group("/api")
	{
		api.GET("/posts", apiHandler.Posts)
		api.GET("/tags", apiHandler.Tags)
	}
}
