package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Routes groups everything the router needs. Idempotency may be nil.
type Routes struct {
	Health      *Handler
	Loans       *LoanHandler
	Accounts    *AccountHandler
	Auth        Authenticator
	Idempotency echo.MiddlewareFunc
	Log         *zap.Logger
}

func (r Routes) Register(e *echo.Echo) {
	idem := r.Idempotency
	if idem == nil {
		idem = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	auth := RequireAuth(r.Auth, log)

	e.GET("/health", r.Health.Health)

	acc := e.Group("/account")
	acc.POST("/register", r.Accounts.Register, idem)
	acc.POST("/token", r.Accounts.Login)
	users := acc.Group("/users", auth)
	users.GET("", r.Accounts.ListUsers)
	users.GET("/:id", r.Accounts.GetUser)
	users.PATCH("/:id", r.Accounts.UpdateUser)

	loans := e.Group("/loan", auth)
	loans.POST("/create-request", r.Loans.CreateLoan, idem)
	loans.GET("/approve/:id", r.Loans.ApproveLoan)
	loans.GET("/reject/:id", r.Loans.RejectLoan)
	loans.PATCH("/edit/:id", r.Loans.EditLoan)
	loans.POST("/filter", r.Loans.FilterLoans)
	loans.GET("/:id", r.Loans.GetLoan)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return fail(c, http.StatusNotFound, "Not found.")
	})
}
