package handler

import (
	"net/http"
	"time"

	"gullak/internal/middleware"
	"gullak/internal/shared"

	"gullak/internal/module/transaction/domain"
	"gullak/internal/module/transaction/service"
	"gullak/internal/money"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the manual transaction routes.
type Handler struct {
	service service.Service
}

func New(service service.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the transaction routes onto the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/transactions", middleware.RequireUser())
	group.POST("", h.Create)
	group.GET("", h.List)
	group.DELETE("/:id", h.Delete)
}

type createRequest struct {
	Amount          float64    `json:"amount" binding:"required"`
	Type            string     `json:"type" binding:"required"`
	Category        string     `json:"category"`
	Description     string     `json:"description"`
	TransactionDate *time.Time `json:"transaction_date"`
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		shared.RespondWithError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.service.Create(c.Request.Context(), userID, service.CreateInput{
		Amount:          money.New(req.Amount),
		Type:            domain.TransactionType(req.Type),
		Category:        req.Category,
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	shared.RespondWithSuccess(c, http.StatusCreated, "transaction created", txn)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		shared.RespondWithError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var txnType *domain.TransactionType
	if raw := c.Query("type"); raw != "" {
		t := domain.TransactionType(raw)
		if !t.IsValid() {
			shared.RespondWithError(c, http.StatusBadRequest, "invalid transaction type")
			return
		}
		txnType = &t
	}

	txns, err := h.service.List(c.Request.Context(), userID, txnType, shared.MaxPageSize)
	if err != nil {
		_ = c.Error(err)
		return
	}
	shared.RespondWithSuccess(c, http.StatusOK, "transactions", txns)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		shared.RespondWithError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		shared.RespondWithError(c, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}
	shared.RespondWithSuccess(c, http.StatusOK, "transaction deleted", nil)
}
