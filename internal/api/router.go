package api

import (
	"net/http"

	"github.com/erazemk/zaloga/internal/artifact"
	"github.com/erazemk/zaloga/internal/catalog"
	"github.com/erazemk/zaloga/internal/identity"
	"github.com/erazemk/zaloga/internal/model"
)

// Deps collects the services the API serves.
type Deps struct {
	Identity  *identity.Service
	Catalog   *catalog.Service
	Artifacts *artifact.Manager
	JWTSecret string
	MaxUpload int64
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Identity: deps.Identity, JWTSecret: deps.JWTSecret}
	usersHandler := &UsersHandler{Identity: deps.Identity}
	itemsHandler := &ItemsHandler{Catalog: deps.Catalog, Artifacts: deps.Artifacts, MaxUpload: deps.MaxUpload}
	dashboardHandler := &DashboardHandler{Catalog: deps.Catalog}

	authMW := AuthMiddleware(deps.JWTSecret)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login and self-service registration.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: read (all roles), write (admin).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))
	mux.Handle("GET /api/items/{id}/pdf", authMW(http.HandlerFunc(itemsHandler.GetPDF)))

	// Catalog metadata and statistics.
	mux.Handle("GET /api/categories", authMW(http.HandlerFunc(itemsHandler.Categories)))
	mux.Handle("GET /api/dashboard", authMW(http.HandlerFunc(dashboardHandler.Get)))

	return mux
}
