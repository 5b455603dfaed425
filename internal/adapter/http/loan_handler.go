package http

import (
	"net/http"
	"strconv"
	"time"

	domain "loan-management/internal/domain/loan"
	"loan-management/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log *zap.Logger
}

func NewLoanHandler(uc *loan.Usecase, log *zap.Logger) *LoanHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoanHandler{uc: uc, log: log}
}

type createLoanReq struct {
	Amount       *int64 `json:"amount"        validate:"required,gt=0"`
	InterestRate *int64 `json:"interest_rate" validate:"omitempty,gte=0,lte=100"`
	Tenure       *int64 `json:"tenure"        validate:"required,gt=0"`
	// customer_id is accepted as an alias
	Customer   *uint64 `json:"customer"`
	CustomerID *uint64 `json:"customer_id"`
}

type editLoanReq struct {
	Amount       *int64 `json:"amount"        validate:"omitempty,gt=0"`
	InterestRate *int64 `json:"interest_rate" validate:"omitempty,gte=0,lte=100"`
	Tenure       *int64 `json:"tenure"        validate:"omitempty,gt=0"`
}

type filterLoanReq struct {
	Tenure    *int64  `json:"tenure"`
	CreatedAt *string `json:"created_at" validate:"omitempty,rfc3339"`
	State     *string `json:"state"      validate:"omitempty,statename"`
}

// loanID parses the :id path param; anything that is not a positive integer cannot name a loan.
func loanID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if req.Customer == nil {
		req.Customer = req.CustomerID
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	if req.Customer == nil || *req.Customer == 0 {
		return c.JSON(http.StatusBadRequest, Envelope{
			Message: msgValidationFailed,
			Error:   true,
			Details: []FieldError{{Field: "customer", Message: "is required"}},
		})
	}

	dto, err := h.uc.Create(c.Request().Context(), CallerFrom(c), loan.CreateLoanInput{
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		Tenure:       req.Tenure,
		CustomerID:   req.Customer,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusCreated, "Loan Request Created", dto)
}

func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	dto, err := h.uc.Approve(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusOK, "Loan was Approved", dto)
}

func (h *LoanHandler) RejectLoan(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	dto, err := h.uc.Reject(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusOK, "Loan was Rejected", dto)
}

func (h *LoanHandler) EditLoan(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req editLoanReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.Edit(c.Request().Context(), CallerFrom(c), id, loan.EditLoanInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusAccepted, "Changes made", dto)
}

func (h *LoanHandler) FilterLoans(c echo.Context) error {
	var req filterLoanReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	in := loan.FilterInput{Tenure: req.Tenure, State: req.State}
	if req.CreatedAt != nil {
		ts, _ := time.Parse(time.RFC3339, *req.CreatedAt) // checked by the validator
		in.CreatedAt = &ts
	}
	list, err := h.uc.Filter(c.Request().Context(), CallerFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusOK, "Data Collected", list)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), CallerFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, http.StatusOK, "Data Collected", dto)
}
