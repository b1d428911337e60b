package equipment

import (
	"net/http"
	"strconv"
	"strings"

	"itinventory/internal/i18n"
	"itinventory/internal/middleware"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/gin-gonic/gin"
)

// Scope is the part of a session the read handler needs.
type Scope interface {
	Store() *Store
	Exclusive(fn func() error) error
}

// ScopeResolver finds the caller's scope in the request context.
type ScopeResolver func(c *gin.Context) (Scope, bool)

type Handler struct {
	resolve ScopeResolver
	catalog *i18n.Catalog
}

func NewHandler(resolve ScopeResolver, catalog *i18n.Catalog) *Handler {
	return &Handler{resolve: resolve, catalog: catalog}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/equipment", h.ListEquipment)
	router.GET("/equipment/:id", h.GetEquipment)
	router.POST("/equipment/reload", h.Reload)
	router.GET("/transactions", h.ListTransactions)
}

// ListEquipment returns the cached rows. status, category and q (name or
// serial substring) narrow the result.
func (h *Handler) ListEquipment(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var status metadata.Status
	if raw := c.Query("status"); raw != "" {
		parsed, err := metadata.NewStatus(raw)
		if err != nil {
			middleware.AbortWithError(c, custom_error.Wrap(custom_error.CodeValidation, err, "invalid status filter"))
			return
		}
		status = parsed
	}
	category := metadata.NormalizeCategory(c.Query("category"))
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))

	items := make([]models.Equipment, 0)
	for _, item := range scope.Store().Snapshot().Equipment {
		if status != "" && item.Status != status {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Name), query) &&
			!strings.Contains(strings.ToLower(item.SerialNumber), query) {
			continue
		}
		items = append(items, item)
	}

	tag := h.catalog.Match(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusOK, gin.H{"items": h.catalog.Present(tag, items)})
}

func (h *Handler) GetEquipment(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	item, found := scope.Store().Find(c.Param("id"))
	if !found {
		middleware.AbortWithError(c, custom_error.Newf(custom_error.CodeNotFound, "equipment %s not found", c.Param("id")))
		return
	}
	tag := h.catalog.Match(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusOK, h.catalog.Present(tag, []models.Equipment{item})[0])
}

// ListTransactions returns the log newest first, optionally capped by limit.
func (h *Handler) ListTransactions(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	entries := scope.Store().Snapshot().Transactions
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			middleware.AbortWithError(c, custom_error.New(custom_error.CodeValidation, "limit must be a non-negative integer"))
			return
		}
		if limit < len(entries) {
			entries = entries[:limit]
		}
	}
	if entries == nil {
		entries = []models.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Reload refetches both collections from the document store.
func (h *Handler) Reload(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	err := scope.Exclusive(func() error {
		return scope.Store().Load(c.Request.Context())
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	tag := h.catalog.Match(c.GetHeader("Accept-Language"))
	snapshot := scope.Store().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"messageKey":   "inventory_reloaded",
		"message":      h.catalog.Text(tag, "inventory_reloaded"),
		"equipment":    len(snapshot.Equipment),
		"transactions": len(snapshot.Transactions),
	})
}

func (h *Handler) scope(c *gin.Context) (Scope, bool) {
	scope, ok := h.resolve(c)
	if !ok {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeUnauthorized, "no active session"))
		return nil, false
	}
	return scope, true
}
