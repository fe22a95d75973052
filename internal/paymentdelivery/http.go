// Package paymentdelivery manages delivery layer of settling payments.
package paymentdelivery

import (
	"context"
	"errors"
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

// Service provides service layer interface needed by payment delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package paymentdelivery
type Service interface {
	Create(ctx context.Context, callerEmail string, groupID, to int64, amount moneypkg.Money) (domain.Payment, error)
	List(ctx context.Context, callerEmail string, groupID int64) ([]domain.Payment, error)
}

// Handler facilitates payment delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns payment handler.
func NewHandler(ps Service) Handler {
	return Handler{service: ps}
}

type data struct {
	Payment domain.Payment `json:"payment"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataPayments struct {
	Payments []domain.Payment `json:"payments"`
}
type responsePayments struct {
	Data dataPayments `json:"data,omitempty"`
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

func writeError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrGroupNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
		return
	case domain.ErrNotGroupMember:
		gctx.JSON(http.StatusForbidden, web.Error(err))
		return
	case domain.ErrUserNotFound,
		domain.ErrInvalidAmount,
		domain.ErrSelfPayment,
		domain.ErrUnknownParticipant:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
}

type createRequest struct {
	GroupID int64          `json:"group_id" binding:"required,min=1"`
	To      int64          `json:"to" binding:"required,min=1"`
	Amount  moneypkg.Money `json:"amount" binding:"required"`
}

// Create handles http request to record a payment from the caller.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	payment, err := h.service.Create(ctx, authPayload.Email, req.GroupID, req.To, req.Amount)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := response{
		Data: data{payment},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// List handles http request to list group payments.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	payments, err := h.service.List(ctx, authPayload.Email, req.ID)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := responsePayments{
		Data: dataPayments{payments},
	}

	gctx.JSON(http.StatusOK, res)
}
