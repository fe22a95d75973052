// Package groupdelivery manages delivery layer of groups.
package groupdelivery

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

// Service provides service layer interface needed by group delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package groupdelivery
type Service interface {
	Create(ctx context.Context, callerEmail, name, currency string) (domain.Group, error)
	Get(ctx context.Context, callerEmail string, groupID int64) (domain.Group, error)
	ListMine(ctx context.Context, callerEmail string) ([]domain.Group, error)
	Rename(ctx context.Context, callerEmail string, groupID int64, name string) (domain.Group, error)
	Delete(ctx context.Context, callerEmail string, groupID int64) error
	AddMember(ctx context.Context, callerEmail string, groupID int64, email string) (domain.Member, error)
	RemoveMember(ctx context.Context, callerEmail string, groupID, memberID int64) error
}

// Handler facilitates group delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns group handler.
func NewHandler(gs Service) Handler {
	return Handler{service: gs}
}

type data struct {
	Group domain.Group `json:"group"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type dataGroups struct {
	Groups []domain.Group `json:"groups"`
}
type responseGroups struct {
	Data dataGroups `json:"data,omitempty"`
}

type dataMember struct {
	Member domain.Member `json:"member"`
}
type responseMember struct {
	Data dataMember `json:"data,omitempty"`
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

type createRequest struct {
	Name     string `json:"name" binding:"required"`
	Currency string `json:"currency" binding:"required,currency"`
}

// Create handles http request to create group.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	createdGroup, err := h.service.Create(ctx, authPayload.Email, req.Name, req.Currency)
	if err != nil {
		if err == domain.ErrUserNotFound {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{createdGroup},
	}

	gctx.JSON(http.StatusOK, res)
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get group with its members.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	group, err := h.service.Get(ctx, authPayload.Email, req.ID)
	if err != nil {
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

		return
	}

	res := response{
		Data: data{group},
	}

	gctx.JSON(http.StatusOK, res)
}

// List handles http request to list the caller's groups.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	groups, err := h.service.ListMine(ctx, authPayload.Email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseGroups{
		Data: dataGroups{groups},
	}

	gctx.JSON(http.StatusOK, res)
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename handles http request to rename group.
func (h *Handler) Rename(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, l, err)

		return
	}

	var req renameRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	group, err := h.service.Rename(ctx, authPayload.Email, uri.ID, req.Name)
	if err != nil {
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

		return
	}

	res := response{
		Data: data{group},
	}

	gctx.JSON(http.StatusOK, res)
}

// Delete handles http request to delete group.
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

		return
	}

	gctx.Status(http.StatusNoContent)
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AddMember handles http request to add a registered user to the group.
func (h *Handler) AddMember(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, l, err)

		return
	}

	var req addMemberRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	member, err := h.service.AddMember(ctx, authPayload.Email, uri.ID, req.Email)
	if err != nil {
		switch err {
		case domain.ErrGroupNotFound, domain.ErrUserNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrNotGroupMember:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		case domain.ErrAlreadyGroupMember:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseMember{
		Data: dataMember{member},
	}

	gctx.JSON(http.StatusOK, res)
}

type removeMemberRequest struct {
	ID       int64 `uri:"id" binding:"required,min=1"`
	MemberID int64 `uri:"memberID" binding:"required,min=1"`
}

// RemoveMember handles http request to remove another member from the group.
func (h *Handler) RemoveMember(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req removeMemberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, l, err)

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	if err := h.service.RemoveMember(ctx, authPayload.Email, req.ID, req.MemberID); err != nil {
		switch err {
		case domain.ErrGroupNotFound, domain.ErrMemberNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrNotGroupMember:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		case domain.ErrCannotRemoveSelf:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.Status(http.StatusNoContent)
}
