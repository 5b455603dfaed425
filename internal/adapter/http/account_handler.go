package http

import (
	"net/http"
	"strconv"

	"loan-management/internal/domain/user"
	"loan-management/internal/usecase/account"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AccountHandler struct {
	uc  *account.Usecase
	log *zap.Logger
}

func NewAccountHandler(uc *account.Usecase, log *zap.Logger) *AccountHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountHandler{uc: uc, log: log}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateUserReq struct {
	Username  *string `json:"username"   validate:"omitempty,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
}

func userID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, user.ErrNotFound
	}
	return id, nil
}

// Register has no validate tags: the usecase owns the ordered field checks.
func (h *AccountHandler) Register(c echo.Context) error {
	var req account.RegisterInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	out, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusCreated, "New User Created Successfully", out)
}

func (h *AccountHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	out, err := h.uc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusOK, "Token issued", out)
}

func (h *AccountHandler) ListUsers(c echo.Context) error {
	out, err := h.uc.ListUsers(c.Request().Context(), CallerFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusOK, "Data Collected", out)
}

func (h *AccountHandler) GetUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.GetUser(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusOK, "Data Collected", out)
}

func (h *AccountHandler) UpdateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	out, err := h.uc.UpdateUser(c.Request().Context(), CallerFrom(c), id, account.UpdateUserInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusAccepted, "Changes made", out)
}
