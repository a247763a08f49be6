package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gatepass/internal/model"
	"gatepass/internal/service"
)

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductRequest represents a product create or update request.
type ProductRequest struct {
	ItemCode        string  `json:"item_code" validate:"required,max=100"`
	ItemDescription string  `json:"item_description" validate:"required,max=500"`
	ItemGroup       *string `json:"item_group" validate:"omitempty,max=100"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		ItemCode:        r.ItemCode,
		ItemDescription: r.ItemDescription,
		ItemGroup:       r.ItemGroup,
	}
}

// ListProducts godoc
// @Summary List products
// @Description Sorted by group, then code.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Product
// @Failure 401 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct godoc
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductRequest true "Product data"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.productService.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, product)
}

// BulkCreateProducts godoc
// @Summary Import products
// @Description Entries without code or description are dropped; existing codes are skipped.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body []service.ProductInput true "Products"
// @Success 200 {object} service.BulkResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /products/bulk [post]
func (h *ProductHandler) BulkCreateProducts(c echo.Context) error {
	var items []service.ProductInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &items); err != nil {
		return invalidBody()
	}
	result, err := h.productService.BulkCreate(c.Request().Context(), items)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateProduct godoc
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body ProductRequest true "Product data"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.productService.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} OKResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}
