package service

import (
	"context"
	"database/sql"
	"log"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug" // For slug generation
)

type ProductService struct {
	productRepo repository.ProductRepository
	db          *sql.DB // For transactions
}

func NewProductService(productRepo repository.ProductRepository, db *sql.DB) *ProductService {
	return &ProductService{productRepo: productRepo, db: db}
}

type CreateProductRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Price       float64               `json:"price"`
	Category    model.ProductCategory `json:"category"`
	Seller      string                `json:"seller"`
	Stock       int                   `json:"stock"`
	Images      []model.ProductImage  `json:"images"`
}

type UpdateProductRequest struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Price       *float64               `json:"price,omitempty"`
	Category    *model.ProductCategory `json:"category,omitempty"`
	Seller      *string                `json:"seller,omitempty"`
	Stock       *int                   `json:"stock,omitempty"`
	Images      *[]model.ProductImage  `json:"images,omitempty"`
}

type ReviewRequest struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func validateProductFields(name string, price float64, category model.ProductCategory, stock int) error {
	if name == "" || len(name) > model.MaxProductNameLength {
		return common.Errorf("product name is required and cannot exceed %d characters: %w",
			model.MaxProductNameLength, common.ErrValidation)
	}
	if price <= 0 {
		return common.Errorf("product price must be positive: %w", common.ErrValidation)
	}
	if !model.ValidCategory(category) {
		return common.Errorf("please select a correct category for the product: %w", common.ErrValidation)
	}
	if stock < 0 {
		return common.Errorf("product stock cannot be negative: %w", common.ErrValidation)
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (*model.Product, error) {
	if req.Description == "" || req.Seller == "" {
		return nil, common.Errorf("missing required fields for product creation: %w", common.ErrBadRequest)
	}
	if err := validateProductFields(req.Name, req.Price, req.Category, req.Stock); err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Seller:      req.Seller,
		Stock:       req.Stock,
		CreatedByID: &userID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.productRepo.CreateProduct(ctx, tx, product); err != nil {
		return nil, common.Errorf("failed to create product in DB: %w", err)
	}

	for i := range req.Images {
		if req.Images[i].ID == "" {
			req.Images[i].ID = uuid.NewString()
		}
		req.Images[i].ProductID = product.ID
		req.Images[i].SortOrder = i + 1
	}
	if len(req.Images) > 0 {
		if err := s.productRepo.AddImagesToProduct(ctx, tx, product.ID, req.Images); err != nil {
			return nil, common.Errorf("failed to add images to product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	product.Images = req.Images // Populate for response
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
		product.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Seller != nil {
		product.Seller = *req.Seller
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if err := validateProductFields(product.Name, product.Price, product.Category, product.Stock); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.productRepo.UpdateProduct(ctx, tx, product); err != nil {
		return nil, common.Errorf("failed to update product: %w", err)
	}

	if req.Images != nil {
		if err := s.productRepo.DeleteImagesByProductID(ctx, tx, product.ID); err != nil {
			return nil, common.Errorf("failed to replace product images: %w", err)
		}
		images := *req.Images
		for i := range images {
			if images[i].ID == "" {
				images[i].ID = uuid.NewString()
			}
			images[i].ProductID = product.ID
			images[i].SortOrder = i + 1
		}
		if err := s.productRepo.AddImagesToProduct(ctx, tx, product.ID, images); err != nil {
			return nil, common.Errorf("failed to replace product images: %w", err)
		}
		product.Images = images
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.productRepo.DeleteProduct(ctx, id)
}

func (s *ProductService) GetProductDetails(ctx context.Context, productSlug string) (*model.Product, error) {
	product, err := s.productRepo.FindProductBySlug(ctx, productSlug)
	if err != nil {
		return nil, err // common.ErrNotFound or other errors
	}

	images, err := s.productRepo.GetImagesByProductID(ctx, product.ID)
	if err != nil {
		log.Printf("WARN: Failed to fetch images for product %s: %v", product.ID, err)
		// Continue, but images will be missing
	}
	product.Images = images

	reviews, err := s.productRepo.GetReviewsByProductID(ctx, product.ID)
	if err != nil {
		log.Printf("WARN: Failed to fetch reviews for product %s: %v", product.ID, err)
	}
	product.Reviews = reviews

	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, pageSize int, category model.ProductCategory) ([]model.Product, int, error) {
	limit := pageSize
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	if category != "" && !model.ValidCategory(category) {
		return nil, 0, common.Errorf("unknown product category: %w", common.ErrValidation)
	}

	return s.productRepo.ListProducts(ctx, limit, offset, category)
}

// UpsertReview creates or replaces the caller's review of a product and
// refreshes the product's aggregates in the same transaction.
func (s *ProductService) UpsertReview(ctx context.Context, userID string, req ReviewRequest) (*model.Review, error) {
	if req.ProductID == "" || req.Comment == "" {
		return nil, common.Errorf("product_id and comment are required: %w", common.ErrBadRequest)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, common.Errorf("rating must be between 1 and 5: %w", common.ErrValidation)
	}

	if _, err := s.productRepo.FindProductByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.productRepo.UpsertReview(ctx, tx, review); err != nil {
		return nil, common.Errorf("failed to save review: %w", err)
	}
	if err := s.productRepo.RefreshRatings(ctx, tx, req.ProductID); err != nil {
		return nil, common.Errorf("failed to refresh product ratings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	return review, nil
}

func (s *ProductService) GetReviews(ctx context.Context, productID string) ([]model.Review, error) {
	if productID == "" {
		return nil, common.Errorf("product_id is required: %w", common.ErrBadRequest)
	}
	if _, err := s.productRepo.FindProductByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.productRepo.GetReviewsByProductID(ctx, productID)
}

func (s *ProductService) DeleteReview(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return common.Errorf("product_id is required: %w", common.ErrBadRequest)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.productRepo.DeleteReview(ctx, tx, productID, userID); err != nil {
		return err
	}
	if err := s.productRepo.RefreshRatings(ctx, tx, productID); err != nil {
		return common.Errorf("failed to refresh product ratings: %w", err)
	}

	return tx.Commit()
}
