package lifecycle

import (
	"context"
	"net/http"

	"itinventory/internal/i18n"
	"itinventory/internal/middleware"
	"itinventory/internal/session"
	custom_error "itinventory/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	catalog *i18n.Catalog
}

func NewHandler(service *Service, catalog *i18n.Catalog) *Handler {
	return &Handler{service: service, catalog: catalog}
}

// RegisterRoutes expects the router group to run the JWT and session
// middleware already.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	masters := router.Group("/masters")
	{
		masters.POST("", h.AddMasterItem)
		masters.PUT("/:id", h.UpdateMasterItem)
		masters.DELETE("/:id", h.DeleteMasterItem)
		masters.POST("/:id/request", h.RequestFromMaster)
	}

	procurement := router.Group("/procurement")
	{
		procurement.POST("/requests", h.CreatePurchaseRequest)
		procurement.DELETE("/requests/:id", h.DeletePurchaseRequest)
		procurement.POST("/purchasing", h.StartPurchasing)
		procurement.POST("/purchased", h.ConfirmPurchased)
		procurement.POST("/:id/cancel", h.CancelPurchase)
		procurement.POST("/:id/import", h.ImportPurchasedItem)
	}

	inventory := router.Group("/inventory")
	{
		inventory.POST("/legacy", h.AddLegacyItem)
		inventory.PATCH("/:id", h.UpdateInventoryItem)
		inventory.DELETE("/:id", h.DeleteInventoryItem)
		inventory.POST("/:id/allocate", h.Allocate)
		inventory.POST("/:id/recall", h.Recall)
		inventory.POST("/:id/damaged", h.MarkDamaged)
		inventory.PUT("/:id/maintenance-note", h.UpdateMaintenanceNote)
		inventory.POST("/:id/repair", h.CompleteRepair)
		inventory.POST("/:id/unrepairable", h.MarkUnrepairable)
		inventory.POST("/:id/liquidate", h.Liquidate)
	}
}

func (h *Handler) AddMasterItem(c *gin.Context) {
	var req MasterItemRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.AddMasterItem(ctx, sess, req)
	})
}

func (h *Handler) UpdateMasterItem(c *gin.Context) {
	var req MasterItemRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.UpdateMasterItem(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) DeleteMasterItem(c *gin.Context) {
	h.respond(c, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.DeleteMasterItem(ctx, sess, c.Param("id"))
	})
}

func (h *Handler) RequestFromMaster(c *gin.Context) {
	h.respond(c, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.RequestFromMaster(ctx, sess, c.Param("id"))
	})
}

func (h *Handler) CreatePurchaseRequest(c *gin.Context) {
	var req PurchaseRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.CreatePurchaseRequest(ctx, sess, req)
	})
}

func (h *Handler) DeletePurchaseRequest(c *gin.Context) {
	h.respond(c, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.DeletePurchaseRequest(ctx, sess, c.Param("id"))
	})
}

func (h *Handler) StartPurchasing(c *gin.Context) {
	var req StartPurchasingRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.StartPurchasing(ctx, sess, req)
	})
}

func (h *Handler) ConfirmPurchased(c *gin.Context) {
	var req IDsRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.ConfirmPurchased(ctx, sess, req)
	})
}

func (h *Handler) CancelPurchase(c *gin.Context) {
	var req NoteRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.CancelPurchase(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) ImportPurchasedItem(c *gin.Context) {
	var req ImportRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.ImportPurchasedItem(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) AddLegacyItem(c *gin.Context) {
	var req LegacyItemRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.AddLegacyItem(ctx, sess, req)
	})
}

func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	var req InventoryUpdateRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.UpdateInventoryItem(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	h.respond(c, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.DeleteInventoryItem(ctx, sess, c.Param("id"))
	})
}

func (h *Handler) Allocate(c *gin.Context) {
	var req AllocateRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.Allocate(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) Recall(c *gin.Context) {
	var req RecallRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.Recall(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) MarkDamaged(c *gin.Context) {
	var req NoteRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.MarkDamaged(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) UpdateMaintenanceNote(c *gin.Context) {
	var req NoteRequest
	withBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.UpdateMaintenanceNote(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) CompleteRepair(c *gin.Context) {
	var req OptionalNoteRequest
	withOptionalBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.CompleteRepair(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) MarkUnrepairable(c *gin.Context) {
	var req OptionalNoteRequest
	withOptionalBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.MarkUnrepairable(ctx, sess, c.Param("id"), req)
	})
}

func (h *Handler) Liquidate(c *gin.Context) {
	var req OptionalNoteRequest
	withOptionalBody(h, c, &req, func(ctx context.Context, sess *session.Session) (Outcome, error) {
		return h.service.Liquidate(ctx, sess, c.Param("id"), req)
	})
}

type operation func(ctx context.Context, sess *session.Session) (Outcome, error)

func withBody[T any](h *Handler, c *gin.Context, req *T, op operation) {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.AbortWithError(c, custom_error.Wrap(custom_error.CodeValidation, err, "invalid request payload"))
		return
	}
	h.respond(c, op)
}

// withOptionalBody accepts an empty body for operations whose only input is
// an optional note.
func withOptionalBody[T any](h *Handler, c *gin.Context, req *T, op operation) {
	if c.Request.ContentLength == 0 {
		h.respond(c, op)
		return
	}
	withBody(h, c, req, op)
}

func (h *Handler) respond(c *gin.Context, op operation) {
	sess, ok := session.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, custom_error.New(custom_error.CodeUnauthorized, "no active session"))
		return
	}

	outcome, err := op(c.Request.Context(), sess)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	tag := h.catalog.Match(c.GetHeader("Accept-Language"))
	body := gin.H{
		"messageKey": outcome.MessageKey,
		"message":    h.catalog.Text(tag, outcome.MessageKey),
		"items":      h.catalog.Present(tag, outcome.Items),
	}
	if outcome.Warning != "" {
		body["warning"] = outcome.Warning
		body["warningMessage"] = h.catalog.Text(tag, outcome.Warning)
	}
	c.JSON(http.StatusOK, body)
}
