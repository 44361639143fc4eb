package handler

import (
	"context"
	"net/http"

	"gullak/internal/apperr"
	"gullak/internal/dispatcher"
	"gullak/internal/middleware"
	"gullak/internal/shared"

	allocservice "gullak/internal/module/allocation/service"
	"gullak/internal/module/connection/domain"
	"gullak/internal/module/connection/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the connection routes. Sync responds as soon as the diff
// is known; allocation and notifications run on the user's task queue
// after the response is written.
type Handler struct {
	service  service.Service
	engine   allocservice.Engine
	notifier *service.SpendingNotifier
	tasks    *dispatcher.Dispatcher
	logger   *zap.Logger
}

func New(
	svc service.Service,
	engine allocservice.Engine,
	notifier *service.SpendingNotifier,
	tasks *dispatcher.Dispatcher,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		service:  svc,
		engine:   engine,
		notifier: notifier,
		tasks:    tasks,
		logger:   logger.Named("connection.handler"),
	}
}

// RegisterRoutes wires the connection routes onto the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/connections", middleware.RequireUser())
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.DELETE("/:id", h.Disconnect)
	group.POST("/:id/sync", h.Sync)
}

type createRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
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
	connType := domain.ConnectionType(req.Type)
	if req.Type == "" {
		connType = domain.ConnectionTypeUPI
	}

	conn, err := h.service.CreateConnection(c.Request.Context(), userID, req.Name, connType)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Goal bootstrap first, then the initial sync-and-allocate; FIFO
	// ordering per user makes the sequence deterministic.
	h.enqueueGoalBootstrap(userID)
	h.enqueueSyncAndAllocate(userID, conn.ID)

	shared.RespondWithSuccess(c, http.StatusCreated, "connection created", conn)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		shared.RespondWithError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	conns, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	shared.RespondWithSuccess(c, http.StatusOK, "connections", conns)
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		shared.RespondWithError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		shared.RespondWithError(c, http.StatusBadRequest, "invalid connection id")
		return
	}
	conn, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	shared.RespondWithSuccess(c, http.StatusOK, "connection", conn)
}

func (h *Handler) Disconnect(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		shared.RespondWithError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		shared.RespondWithError(c, http.StatusBadRequest, "invalid connection id")
		return
	}
	conn, err := h.service.Disconnect(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	shared.RespondWithSuccess(c, http.StatusOK, "connection disconnected", conn)
}

func (h *Handler) Sync(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		shared.RespondWithError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		shared.RespondWithError(c, http.StatusBadRequest, "invalid connection id")
		return
	}

	conn, newIncome, newExpenses, err := h.service.Sync(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if len(newIncome) > 0 {
		h.enqueueAllocation(userID, conn, newIncome)
	}
	if len(newExpenses) > 0 {
		h.enqueueSpendingNotify(userID, newExpenses)
	}

	shared.RespondWithSuccess(c, http.StatusOK, "sync completed", gin.H{
		"connection":        conn,
		"new_income_count":  len(newIncome),
		"new_expense_count": len(newExpenses),
	})
}

func (h *Handler) enqueueGoalBootstrap(userID uuid.UUID) {
	if err := h.tasks.Enqueue(userID, "ProcessGoalsAfterConnection", func(ctx context.Context) error {
		return h.engine.EnsureUserGoals(ctx, userID)
	}); err != nil {
		h.logger.Error("failed to enqueue goal bootstrap", zap.Error(err))
	}
}

// enqueueSyncAndAllocate performs the first sync of a fresh connection in
// the background and allocates whatever income it surfaces.
func (h *Handler) enqueueSyncAndAllocate(userID, connectionID uuid.UUID) {
	if err := h.tasks.Enqueue(userID, "AllocateIncomeFromNewConnection", func(ctx context.Context) error {
		conn, newIncome, newExpenses, err := h.service.Sync(ctx, userID, connectionID)
		if err != nil {
			return err
		}
		if len(newExpenses) > 0 {
			h.notifier.Notify(ctx, userID, newExpenses)
		}
		if len(newIncome) == 0 {
			return nil
		}
		return h.allocate(ctx, userID, conn, newIncome)
	}); err != nil {
		h.logger.Error("failed to enqueue initial sync", zap.Error(err))
	}
}

func (h *Handler) enqueueAllocation(userID uuid.UUID, conn *domain.Connection, newIncome []domain.Transaction) {
	if err := h.tasks.Enqueue(userID, "AllocateIncomeFromSync", func(ctx context.Context) error {
		return h.allocate(ctx, userID, conn, newIncome)
	}); err != nil {
		h.logger.Error("failed to enqueue income allocation", zap.Error(err))
	}
}

func (h *Handler) enqueueSpendingNotify(userID uuid.UUID, expenses []domain.Transaction) {
	if err := h.tasks.Enqueue(userID, "NotifyConnectionSpending", func(ctx context.Context) error {
		h.notifier.Notify(ctx, userID, expenses)
		return nil
	}); err != nil {
		h.logger.Error("failed to enqueue spending notification", zap.Error(err))
	}
}

func (h *Handler) allocate(ctx context.Context, userID uuid.UUID, conn *domain.Connection, newIncome []domain.Transaction) error {
	credits := make([]allocservice.IncomeCredit, 0, len(newIncome))
	for _, t := range newIncome {
		credits = append(credits, allocservice.IncomeCredit{
			ID:          t.ID,
			Amount:      t.Amount,
			Timestamp:   t.Timestamp,
			Description: t.Description,
		})
	}
	_, err := h.engine.Allocate(ctx, allocservice.Request{
		UserID:     userID,
		Connection: conn,
		Credits:    credits,
	})
	if apperr.IsNoActiveGoals(err) {
		h.logger.Info("no active goals, credits left unconsumed",
			zap.String("user_id", userID.String()))
		return nil
	}
	return err
}
