package backup

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"itinventory/internal/i18n"
	"itinventory/internal/middleware"
	"itinventory/internal/session"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/roles"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

// maxBackupSize bounds the restore body.
const maxBackupSize = 32 << 20

type Handler struct {
	service *Service
	catalog *i18n.Catalog
}

func NewHandler(service *Service, catalog *i18n.Catalog) *Handler {
	return &Handler{service: service, catalog: catalog}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/backup", h.Export)
	router.POST("/backup/restore", h.Restore)
	router.POST("/backup/reset", security.Authorize(roles.Admin), h.Reset)
}

func (h *Handler) Export(c *gin.Context) {
	sess, ok := session.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeUnauthorized, "no active session"))
		return
	}
	filename := fmt.Sprintf("inventory-backup-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, h.service.Export(sess))
}

// Restore reads the backup from the body. confirm=true is required.
func (h *Handler) Restore(c *gin.Context) {
	sess, ok := session.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeUnauthorized, "no active session"))
		return
	}
	raw, err := readBody(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	summary, err := h.service.Restore(c.Request.Context(), sess, raw, confirmed(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	tag := h.catalog.Match(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusOK, gin.H{
		"messageKey": "inventory_restored",
		"message":    h.catalog.Text(tag, "inventory_restored"),
		"restored":   summary,
	})
}

func (h *Handler) Reset(c *gin.Context) {
	sess, ok := session.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeUnauthorized, "no active session"))
		return
	}
	if err := h.service.Reset(c.Request.Context(), sess, confirmed(c)); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	tag := h.catalog.Match(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusOK, gin.H{
		"messageKey": "inventory_cleared",
		"message":    h.catalog.Text(tag, "inventory_cleared"),
	})
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupSize)
	raw, err := c.GetRawData()
	if err != nil {
		return nil, custom_error.Wrap(custom_error.CodeValidation, err, "unable to read backup")
	}
	return raw, nil
}
