package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/wire-scout/internal/domain"
	"github.com/samvad-hq/wire-scout/internal/logger"
)

const welcomeMessage = "Welcome to Wire Scout API!"

// ArticleQuerier is the read side of the article store.
type ArticleQuerier interface {
	Query(ctx context.Context, f domain.Filter) ([]domain.StoredArticle, error)
}

// ArticleHandler serves article queries.
type ArticleHandler struct {
	store ArticleQuerier
	log   logger.Logger
}

// NewArticleHandler creates an ArticleHandler.
func NewArticleHandler(store ArticleQuerier, log logger.Logger) *ArticleHandler {
	return &ArticleHandler{store: store, log: logger.Ensure(log)}
}

// List handles GET /v1/articles. Invalid parameters are rejected with 422
// before the store is queried.
func (h *ArticleHandler) List(c *gin.Context) {
	filter, errs := parseFilter(c)
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": detailsOf(errs)})
		return
	}

	items, err := h.store.Query(c.Request.Context(), filter)
	if err != nil {
		h.log.ErrorObj("article query failed", "query_error", map[string]any{
			"path":  c.Request.URL.RequestURI(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": toViews(items)})
}

// Welcome handles GET /.
func Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
}

// Health handles GET /healthz.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
