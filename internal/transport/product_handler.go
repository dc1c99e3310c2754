package transport

import (
	"errors"
	"net/http"
	"strconv"

	"aura-hype/internal/domain"
	"aura-hype/internal/middleware"
	"aura-hype/internal/repository"
	"aura-hype/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest is the create and update payload. Updates replace every
// field, so omitted optional fields are cleared. Gender is free text like
// category; a blank value is stored as unisex.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=255"`
	Price       string   `json:"price" validate:"required,notblank,max=64"`
	Image       string   `json:"image" validate:"required,notblank"`
	Brand       string   `json:"brand" validate:"required,notblank,max=128"`
	Category    *string  `json:"category" validate:"omitempty,max=128"`
	Gender      *string  `json:"gender" validate:"omitempty,max=32"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required"`
	ExtraImages []string `json:"extra_images" validate:"omitempty,dive,notblank"`
}

func (req *ProductRequest) toInput() *domain.ProductInput {
	return &domain.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Image:       req.Image,
		Brand:       req.Brand,
		Category:    req.Category,
		Gender:      req.Gender,
		Description: req.Description,
		Tags:        req.Tags,
		ExtraImages: req.ExtraImages,
	}
}

// DeleteResponse reports how many products a delete removed
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog routes. Mutations go through limiter.
func (h *ProductHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(limiter)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/tags", h.Tags)
		r.Get("/brands", h.Brands)
	})
}

// ListProducts handles GET /api/products?brand=&gender=&search=&tag=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	criteria := domain.ListCriteria{
		Brand:  query.Get("brand"),
		Gender: query.Get("gender"),
		Search: query.Get("search"),
		Tag:    query.Get("tag"),
	}

	products, err := h.catalogService.ListProducts(r.Context(), criteria)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err), zap.Any("criteria", criteria))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	if products == nil {
		products = []*domain.Product{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}. An unknown id yields null.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		h.respondWithServiceError(w, err, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		h.respondWithServiceError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	deleted, err := h.catalogService.DeleteProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// Tags handles GET /api/catalog/tags
func (h *ProductHandler) Tags(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalogService.Tags())
}

// Brands handles GET /api/catalog/brands
func (h *ProductHandler) Brands(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalogService.Brands())
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request, req *ProductRequest) bool {
	if err := middleware.DecodeAndValidate(r, req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *ProductHandler) respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
