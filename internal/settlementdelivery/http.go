// Package settlementdelivery manages delivery layer of settlements and dashboards.
package settlementdelivery

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
	"github.com/go-divvy/divvy/pkg/tokenpkg"
	"github.com/go-divvy/divvy/pkg/web"
)

// Service provides service layer interface needed by settlement delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package settlementdelivery
type Service interface {
	Settle(ctx context.Context, callerEmail string, groupID int64) (domain.Settlement, error)
	Dashboard(ctx context.Context, callerEmail string, groupID int64) (domain.DashboardSummary, error)
}

// Handler facilitates settlement delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns settlement handler.
func NewHandler(ss Service) Handler {
	return Handler{service: ss}
}

type data struct {
	Settlement domain.Settlement `json:"settlement"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataDashboard struct {
	Dashboard domain.DashboardSummary `json:"dashboard"`
}
type responseDashboard struct {
	Data dataDashboard `json:"data,omitempty"`
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
	case domain.ErrUserNotFound:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Settle handles http request to compute group balances and suggested transfers.
func (h *Handler) Settle(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	settlement, err := h.service.Settle(ctx, authPayload.Email, req.ID)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := response{
		Data: data{settlement},
	}

	gctx.JSON(http.StatusOK, res)
}

// Dashboard handles http request to summarize group spending.
func (h *Handler) Dashboard(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	dashboard, err := h.service.Dashboard(ctx, authPayload.Email, req.ID)
	if err != nil {
		writeError(gctx, err)

		return
	}

	res := responseDashboard{
		Data: dataDashboard{dashboard},
	}

	gctx.JSON(http.StatusOK, res)
}
