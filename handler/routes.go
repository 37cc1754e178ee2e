package handler

import (
	"expvar"
	"net/http"

	"github.com/emzola/librarian/internal/policy"
	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/v1/authors", h.authorize(policy.Catalog, policy.Read, h.listAuthorsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/authors", h.authorize(policy.Catalog, policy.Write, h.createAuthorHandler))
	router.HandlerFunc(http.MethodGet, "/v1/authors/:authorId", h.authorize(policy.Catalog, policy.Read, h.showAuthorHandler))
	router.HandlerFunc(http.MethodPut, "/v1/authors/:authorId", h.authorize(policy.Catalog, policy.Write, h.updateAuthorHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/authors/:authorId", h.authorize(policy.Catalog, policy.Write, h.updateAuthorHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/authors/:authorId", h.authorize(policy.Catalog, policy.Write, h.deleteAuthorHandler))

	router.HandlerFunc(http.MethodGet, "/v1/books", h.authorize(policy.Catalog, policy.Read, h.listBooksHandler))
	router.HandlerFunc(http.MethodPost, "/v1/books", h.authorize(policy.Catalog, policy.Write, h.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:bookId", h.authorize(policy.Catalog, policy.Read, h.showBookHandler))
	router.HandlerFunc(http.MethodPut, "/v1/books/:bookId", h.authorize(policy.Catalog, policy.Write, h.updateBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId", h.authorize(policy.Catalog, policy.Write, h.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:bookId", h.authorize(policy.Catalog, policy.Write, h.deleteBookHandler))
	router.HandlerFunc(http.MethodPut, "/v1/books/:bookId/cover", h.authorize(policy.Catalog, policy.Write, h.updateBookCoverHandler))

	router.HandlerFunc(http.MethodGet, "/v1/borrowings", h.authorize(policy.Borrowings, policy.Read, h.listBorrowingsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/borrowings", h.authorize(policy.Borrowings, policy.Create, h.createBorrowingHandler))
	router.HandlerFunc(http.MethodGet, "/v1/borrowings/:borrowingId", h.requireBorrowingAccess(h.showBorrowingHandler))
	router.HandlerFunc(http.MethodPost, "/v1/borrowings/:borrowingId/return", h.requireBorrowingAccess(h.returnBorrowingHandler))

	router.HandlerFunc(http.MethodPost, "/v1/users", h.registerUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/me", h.authorize(policy.Profile, policy.Read, h.showUserHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/users/me", h.authorize(policy.Profile, policy.Write, h.updateUserHandler))

	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", h.createAuthenticationTokenHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/tokens/authentication", h.authorize(policy.Profile, policy.Write, h.deleteAuthenticationTokenHandler))

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.recoverPanic(h.metrics(h.enableCORS(h.rateLimit(h.authenticate(router)))))
}
