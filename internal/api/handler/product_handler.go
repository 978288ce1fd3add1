package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/api/middleware"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/app/service"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productService *service.ProductService
	denylist       repository.SessionDenylist
}

func NewProductHandler(ps *service.ProductService, denylist repository.SessionDenylist) *ProductHandler {
	return &ProductHandler{productService: ps, denylist: denylist}
}

// RegisterRoutes wires the public catalog endpoints under /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Get("/{productSlug}", h.getProduct)
}

// RegisterAdminRoutes wires product management under /admin/products.
func (h *ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Use(middleware.Authenticator(h.denylist))
	r.Use(middleware.AdminOnly)
	r.Post("/", h.createProduct)
	r.Put("/{productID}", h.updateProduct)
	r.Delete("/{productID}", h.deleteProduct)
}

// RegisterReviewRoutes wires authenticated review endpoints.
func (h *ProductHandler) RegisterReviewRoutes(r chi.Router) {
	r.Use(middleware.Authenticator(h.denylist))
	r.Put("/review", h.upsertReview)
	r.Get("/reviews", h.getReviews)
	r.Delete("/reviews", h.deleteReview)
}

func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.productService.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Product deleted"})
}

func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	pageStr := r.URL.Query().Get("page")
	pageSizeStr := r.URL.Query().Get("pageSize")
	categoryStr := r.URL.Query().Get("category")

	page, _ := strconv.Atoi(pageStr)
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(pageSizeStr)
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	products, total, err := h.productService.ListProducts(r.Context(), page, pageSize, model.ProductCategory(categoryStr))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type PaginatedProductsResponse struct {
		Products []model.Product `json:"products"`
		Total    int             `json:"total"`
		Page     int             `json:"page"`
		PageSize int             `json:"page_size"`
	}
	common.RespondWithJSON(w, http.StatusOK, PaginatedProductsResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProductDetails(r.Context(), chi.URLParam(r, "productSlug"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) upsertReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	review, err := h.productService.UpsertReview(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, review)
}

func (h *ProductHandler) getReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.productService.GetReviews(r.Context(), r.URL.Query().Get("productId"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *ProductHandler) deleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.productService.DeleteReview(r.Context(), userID, r.URL.Query().Get("productId")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Review deleted"})
}
