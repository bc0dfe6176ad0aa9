package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/core/ports"
)

// TenantHandler handles tenant administration.
type TenantHandler struct {
	service ports.TenantService
}

func NewTenantHandler(service ports.TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// Create handles POST /tenants.
//
// @Summary      Create a tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTenantRequest  true  "Tenant details"
// @Success      201   {object}  domain.Tenant
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /tenants [post]
func (h *TenantHandler) Create(c echo.Context) error {
	var req createTenantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	t, err := h.service.Create(c.Request().Context(), ports.CreateTenantInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Settings: req.Settings,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// List handles GET /tenants.
//
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listTenantsResponse
// @Router       /tenants [get]
func (h *TenantHandler) List(c echo.Context) error {
	ts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listTenantsResponse{Data: ts})
}

// Get handles GET /tenants/:id.
//
// @Summary      Get a tenant
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tenant id"
// @Success      200  {object}  domain.Tenant
// @Failure      404  {object}  errorResponse
// @Router       /tenants/{id} [get]
func (h *TenantHandler) Get(c echo.Context) error {
	t, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Current handles GET /tenants/current.
//
// @Summary      Caller's tenant
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Tenant
// @Failure      403  {object}  errorResponse
// @Router       /tenants/current [get]
func (h *TenantHandler) Current(c echo.Context) error {
	t, err := h.service.Current(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}
