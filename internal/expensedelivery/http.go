// Package expensedelivery manages delivery layer of expenses.
package expensedelivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/internal/middleware"
	"github.com/go-divvy/divvy/pkg/errorspkg"
	"github.com/go-divvy/divvy/pkg/moneypkg"
	"github.com/go-divvy/divvy/pkg/tokenpkg"
	"github.com/go-divvy/divvy/pkg/web"
)

// Service provides service layer interface needed by expense delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package expensedelivery
type Service interface {
	Create(ctx context.Context, callerEmail string, arg domain.CreateExpenseParams) (domain.Expense, error)
	Get(ctx context.Context, callerEmail string, id int64) (domain.Expense, error)
	List(ctx context.Context, callerEmail string, arg domain.ListExpensesParams) ([]domain.Expense, error)
	Update(ctx context.Context, callerEmail string, arg domain.UpdateExpenseParams) (domain.Expense, error)
	Delete(ctx context.Context, callerEmail string, id int64) error
	ExportCSV(ctx context.Context, callerEmail string, groupID int64) ([]byte, error)
}

// Handler facilitates expense delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns expense handler.
func NewHandler(es Service) Handler {
	return Handler{service: es}
}

type data struct {
	Expense domain.Expense `json:"expense"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataExpenses struct {
	Expenses []domain.Expense `json:"expenses"`
}
type responseExpenses struct {
	Data dataExpenses `json:"data,omitempty"`
}

func bindingError(gctx *gin.Context, l *zerolog.Logger, err error) {
	l.Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}

// writeError maps service errors shared by all expense endpoints to statuses.
func writeError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrExpenseNotFound, domain.ErrGroupNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
		return
	case domain.ErrNotGroupMember:
		gctx.JSON(http.StatusForbidden, web.Error(err))
		return
	case domain.ErrUserNotFound,
		domain.ErrInvalidAmount,
		domain.ErrNoParticipants,
		domain.ErrUnknownParticipant,
		domain.ErrInvalidCategory,
		domain.ErrInvalidSplitType:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	var shareErr *domain.ShareMismatchError
	if errors.As(err, &shareErr) {
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
}

type createRequest struct {
	GroupID      int64                    `json:"group_id" binding:"required,min=1"`
	Description  string                   `json:"description" binding:"required"`
	Category     string                   `json:"category" binding:"omitempty,category"`
	Amount       moneypkg.Money           `json:"amount" binding:"required"`
	PaidBy       int64                    `json:"paid_by" binding:"required,min=1"`
	SplitType    string                   `json:"split_type" binding:"required,oneof=equal custom"`
	Participants []int64                  `json:"participants"`
	Shares       map[int64]moneypkg.Money `json:"shares"`
}

// Create handles http request to create expense.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateExpenseParams{
		GroupID:      req.GroupID,
		Description:  req.Description,
		Category:     domain.Category(req.Category),
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		SplitType:    domain.SplitType(req.SplitType),
		Participants: req.Participants,
		Shares:       req.Shares,
	}

	createdExpense, err := h.service.Create(ctx, authPayload.Email, arg)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := response{
		Data: data{createdExpense},
	}

	gctx.JSON(http.StatusOK, res)
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get a single expense.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	expense, err := h.service.Get(ctx, authPayload.Email, req.ID)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := response{
		Data: data{expense},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	GroupID  int64  `form:"group_id" binding:"required,min=1"`
	Search   string `form:"search"`
	Category string `form:"category" binding:"omitempty,category"`
	Limit    int32  `form:"limit"`
	Offset   int32  `form:"offset"`
}

// List handles http request to list group expenses with optional filters.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.ListExpensesParams{
		GroupID:  req.GroupID,
		Search:   req.Search,
		Category: domain.Category(req.Category),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}

	expenses, err := h.service.List(ctx, authPayload.Email, arg)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := responseExpenses{
		Data: dataExpenses{expenses},
	}

	gctx.JSON(http.StatusOK, res)
}

type updateRequest struct {
	Description  *string                  `json:"description"`
	Category     *string                  `json:"category" binding:"omitempty,category"`
	Amount       *moneypkg.Money          `json:"amount"`
	PaidBy       *int64                   `json:"paid_by" binding:"omitempty,min=1"`
	SplitType    *string                  `json:"split_type" binding:"omitempty,oneof=equal custom"`
	Participants []int64                  `json:"participants"`
	Shares       map[int64]moneypkg.Money `json:"shares"`
}

// Update handles http request to partially update an expense.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, l, err)

		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.UpdateExpenseParams{
		ID:           uri.ID,
		Description:  req.Description,
		Category:     (*domain.Category)(req.Category),
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		SplitType:    (*domain.SplitType)(req.SplitType),
		Participants: req.Participants,
		Shares:       req.Shares,
	}

	updatedExpense, err := h.service.Update(ctx, authPayload.Email, arg)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := response{
		Data: data{updatedExpense},
	}

	gctx.JSON(http.StatusOK, res)
}

// Delete handles http request to delete an expense.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	if err := h.service.Delete(ctx, authPayload.Email, req.ID); err != nil {
		writeError(gctx, err)

		return
	}

	gctx.Status(http.StatusNoContent)
}

// ExportCSV handles http request to download group expenses as a CSV file.
func (h *Handler) ExportCSV(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	csvData, err := h.service.ExportCSV(ctx, authPayload.Email, req.ID)
	if err != nil {
		writeError(gctx, err)

		return
	}

	filename := fmt.Sprintf("group-%d-expenses.csv", req.ID)
	gctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	gctx.Data(http.StatusOK, "text/csv", csvData)
}
