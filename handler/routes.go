package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/v1/books", h.requireActiveUser(h.listBooksHandler))
	router.HandlerFunc(http.MethodPost, "/v1/books", h.requireAdminUser(h.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:bookId", h.requireActiveUser(h.showBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId", h.requireAdminUser(h.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:bookId", h.requireAdminUser(h.deleteBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId/cover", h.requireAdminUser(h.updateBookCoverHandler))

	router.HandlerFunc(http.MethodPost, "/v1/users", h.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/:userId/verified", h.verifyEmailHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users", h.requireAdminUser(h.listUsersHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:userId", h.requireAdminUser(h.showUserHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/users/:userId", h.requireAdminUser(h.updateUserHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/users/:userId/block", h.requireAdminUser(h.blockUserHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/users/:userId", h.requireAdminUser(h.deleteUserHandler))

	router.HandlerFunc(http.MethodPost, "/v1/loans", h.requireVerifiedUser(h.createLoanHandler))
	router.HandlerFunc(http.MethodGet, "/v1/loans", h.requireActiveUser(h.listLoansHandler))
	router.HandlerFunc(http.MethodGet, "/v1/loans/:loanId", h.requireLoanOwnerPermission(h.showLoanHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/loans/:loanId/renew", h.requireLoanOwnerPermission(h.renewLoanHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/loans/:loanId/return", h.requireLoanOwnerPermission(h.returnLoanHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/loans/:loanId", h.requireAdminUser(h.deleteLoanHandler))

	router.HandlerFunc(http.MethodPost, "/v1/reservations", h.requireVerifiedUser(h.createReservationHandler))
	router.HandlerFunc(http.MethodGet, "/v1/reservations", h.requireActiveUser(h.listReservationsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/reservations/:reservationId", h.requireReservationOwnerPermission(h.showReservationHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/reservations/:reservationId", h.requireAdminUser(h.updateReservationHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/reservations/:reservationId", h.requireAdminUser(h.deleteReservationHandler))

	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", h.createAuthenticationTokenHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/tokens/authentication", h.requireAuthenticatedUser(h.deleteAuthenticationTokenHandler))

	router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.recoverPanic(h.metrics(h.enableCORS(h.rateLimit(h.authenticate(router)))))
}
