package router

import (
	"github.com/erp/accounting/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// AccountingRoutes registers the accounting domain routes
type AccountingRoutes struct {
	documents *handler.DocumentHandler
	costs     *handler.CostHandler
}

// NewAccountingRoutes creates the accounting route registrar
func NewAccountingRoutes(documents *handler.DocumentHandler, costs *handler.CostHandler) *AccountingRoutes {
	return &AccountingRoutes{
		documents: documents,
		costs:     costs,
	}
}

// RegisterRoutes implements RouteRegistrar
func (r *AccountingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/accounting")

	documents := group.Group("/documents")
	{
		documents.GET("", r.documents.List)
		documents.POST("", r.documents.Create)
		documents.GET("/:id", r.documents.GetByID)
		documents.PUT("/:id", r.documents.Update)
		documents.DELETE("/:id", r.documents.Delete)
		documents.POST("/:id/post", r.documents.Post)
		documents.POST("/:id/cancel", r.documents.Cancel)
		documents.GET("/:id/lines", r.documents.ListLines)
		documents.POST("/:id/lines", r.documents.CreateLine)
	}

	lines := group.Group("/lines")
	{
		lines.GET("/:id", r.documents.GetLine)
		lines.PUT("/:id", r.documents.UpdateLine)
		lines.DELETE("/:id", r.documents.DeleteLine)
	}

	costs := group.Group("/costs")
	{
		costs.GET("", r.costs.List)
		costs.POST("", r.costs.Create)
		costs.GET("/:id", r.costs.GetByID)
		costs.PUT("/:id", r.costs.Update)
		costs.DELETE("/:id", r.costs.Delete)
		costs.POST("/:id/distribute", r.costs.Distribute)
		costs.POST("/:id/lines", r.costs.CreateLine)
	}

	costLines := group.Group("/cost-lines")
	{
		costLines.GET("/:id", r.costs.GetLine)
		costLines.PUT("/:id", r.costs.UpdateLine)
		costLines.DELETE("/:id", r.costs.DeleteLine)
	}
}

// SystemRoutes registers health and info routes
type SystemRoutes struct {
	system *handler.SystemHandler
}

// NewSystemRoutes creates the system route registrar
func NewSystemRoutes(system *handler.SystemHandler) *SystemRoutes {
	return &SystemRoutes{system: system}
}

// RegisterRoutes implements RouteRegistrar
func (r *SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/system")
	{
		group.GET("/health", r.system.Health)
		group.GET("/info", r.system.Info)
	}
}
