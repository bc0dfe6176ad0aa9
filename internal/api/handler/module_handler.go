package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/ports"
)

// ModuleCatalog is the read surface of the module registry.
type ModuleCatalog interface {
	Get(slug string) (domain.ModuleDescriptor, error)
	List() []domain.ModuleDescriptor
	Validate(d domain.ModuleDescriptor) error
}

// ModuleLoader owns every write to the registry, so single registrations
// and bulk reloads never interleave.
type ModuleLoader interface {
	Load(ctx context.Context) (int, error)
	Register(ctx context.Context, d domain.ModuleDescriptor) error
}

// ModuleHandler exposes the module registry.
type ModuleHandler struct {
	catalog ModuleCatalog
	repo    ports.ModuleRepository
	loader  ModuleLoader
}

func NewModuleHandler(catalog ModuleCatalog, repo ports.ModuleRepository, loader ModuleLoader) *ModuleHandler {
	return &ModuleHandler{catalog: catalog, repo: repo, loader: loader}
}

// List returns every registered module in registration order.
//
// @Summary      List modules
// @Tags         modules
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listModulesResponse
// @Failure      401  {object}  errorResponse
// @Router       /modules [get]
func (h *ModuleHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, listModulesResponse{Data: h.catalog.List()})
}

// Get returns one module by slug.
//
// @Summary      Get a module
// @Tags         modules
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path      string  true  "Module slug"
// @Success      200   {object}  domain.ModuleDescriptor
// @Failure      404   {object}  errorResponse
// @Router       /modules/{slug} [get]
func (h *ModuleHandler) Get(c echo.Context) error {
	d, err := h.catalog.Get(c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Register persists a descriptor and adds or replaces it in the live
// registry.
//
// @Summary      Register a module
// @Tags         modules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerModuleRequest  true  "Module descriptor"
// @Success      201   {object}  domain.ModuleDescriptor
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /modules [post]
func (h *ModuleHandler) Register(c echo.Context) error {
	var req registerModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d := req.toDomain()
	if err := h.catalog.Validate(d); err != nil {
		return err
	}
	if err := h.repo.Upsert(c.Request().Context(), d); err != nil {
		return err
	}
	if err := h.loader.Register(c.Request().Context(), d); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// Reload re-reads the module source and swaps the registry contents.
//
// @Summary      Reload the module registry
// @Tags         modules
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  reloadResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /modules/reload [post]
func (h *ModuleHandler) Reload(c echo.Context) error {
	n, err := h.loader.Load(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reloadResponse{Loaded: n})
}
