package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProductRepo is an in-memory ProductRepository. Transaction handles are
// accepted and ignored; the sqlmock DB in the fixture supplies them.
type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
	images   map[string][]model.ProductImage
	reviews  map[string]map[string]*model.Review // productID -> userID -> review
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		products: map[string]*model.Product{},
		images:   map[string][]model.ProductImage{},
		reviews:  map[string]map[string]*model.Review{},
	}
}

func (r *memProductRepo) CreateProduct(_ context.Context, _ *sql.Tx, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			return common.ErrConflict
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateProduct(_ context.Context, _ *sql.Tx, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *p
	cp.Images = nil
	cp.Reviews = nil
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) FindProductByID(_ context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *memProductRepo) FindProductBySlug(_ context.Context, slug string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memProductRepo) ListProducts(_ context.Context, limit, offset int, category model.ProductCategory) ([]model.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []model.Product{}
	for _, p := range r.products {
		if category == "" || p.Category == category {
			matched = append(matched, *p)
		}
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memProductRepo) AddImagesToProduct(_ context.Context, _ *sql.Tx, productID string, images []model.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[productID] = append(r.images[productID], images...)
	return nil
}

func (r *memProductRepo) GetImagesByProductID(_ context.Context, productID string) ([]model.ProductImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.images[productID], nil
}

func (r *memProductRepo) DeleteImagesByProductID(_ context.Context, _ *sql.Tx, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.images, productID)
	return nil
}

func (r *memProductRepo) UpsertReview(_ context.Context, _ *sql.Tx, review *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reviews[review.ProductID] == nil {
		r.reviews[review.ProductID] = map[string]*model.Review{}
	}
	cp := *review
	r.reviews[review.ProductID][review.UserID] = &cp
	return nil
}

func (r *memProductRepo) DeleteReview(_ context.Context, _ *sql.Tx, productID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[productID][userID]; !ok {
		return common.ErrNotFound
	}
	delete(r.reviews[productID], userID)
	return nil
}

func (r *memProductRepo) GetReviewsByProductID(_ context.Context, productID string) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reviews := []model.Review{}
	for _, rv := range r.reviews[productID] {
		reviews = append(reviews, *rv)
	}
	return reviews, nil
}

func (r *memProductRepo) RefreshRatings(_ context.Context, _ *sql.Tx, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return common.ErrNotFound
	}
	var sum int
	for _, rv := range r.reviews[productID] {
		sum += rv.Rating
	}
	p.NumOfReviews = len(r.reviews[productID])
	if p.NumOfReviews == 0 {
		p.Ratings = 0
	} else {
		p.Ratings = float64(sum) / float64(p.NumOfReviews)
	}
	return nil
}

type productFixture struct {
	svc  *ProductService
	repo *memProductRepo
	mock sqlmock.Sqlmock
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newMemProductRepo()
	return &productFixture{svc: NewProductService(repo, db), repo: repo, mock: mock}
}

// expectTx queues one begin/commit pair on the mock DB.
func (f *productFixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func validCreateRequest() CreateProductRequest {
	return CreateProductRequest{
		Name:        "Vintage Shirt",
		Description: "A very nice shirt",
		Price:       29.99,
		Category:    model.CategoryShirt,
		Seller:      "ShirtCo",
		Stock:       10,
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	f := newProductFixture(t)
	f.expectTx()

	product, err := f.svc.CreateProduct(context.Background(), "admin-1", validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "vintage-shirt", product.Slug)
	require.NotNil(t, product.CreatedByID)
	assert.Equal(t, "admin-1", *product.CreatedByID)
}

func TestProductService_CreateProduct_ImageOrder(t *testing.T) {
	f := newProductFixture(t)
	f.expectTx()

	req := validCreateRequest()
	req.Images = []model.ProductImage{
		{PublicID: "img-front", URL: "https://cdn.example/front.jpg"},
		{PublicID: "img-back", URL: "https://cdn.example/back.jpg"},
	}

	product, err := f.svc.CreateProduct(context.Background(), "admin-1", req)
	require.NoError(t, err)

	// The response must echo the images exactly as stored.
	require.Len(t, product.Images, 2)
	for i, img := range product.Images {
		assert.Equal(t, i+1, img.SortOrder)
		assert.Equal(t, product.ID, img.ProductID)
		assert.NotEmpty(t, img.ID)
	}

	stored, err := f.repo.GetImagesByProductID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Images, stored)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	f := newProductFixture(t)

	tests := []struct {
		name    string
		mutate  func(*CreateProductRequest)
		wantErr error
	}{
		{"missing description", func(r *CreateProductRequest) { r.Description = "" }, common.ErrBadRequest},
		{"name too long", func(r *CreateProductRequest) {
			for len(r.Name) <= model.MaxProductNameLength {
				r.Name += r.Name
			}
		}, common.ErrValidation},
		{"zero price", func(r *CreateProductRequest) { r.Price = 0 }, common.ErrValidation},
		{"unknown category", func(r *CreateProductRequest) { r.Category = "Socks" }, common.ErrValidation},
		{"negative stock", func(r *CreateProductRequest) { r.Stock = -1 }, common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := f.svc.CreateProduct(context.Background(), "admin-1", req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProductService_UpdateProduct_Partial(t *testing.T) {
	f := newProductFixture(t)
	f.expectTx()

	product, err := f.svc.CreateProduct(context.Background(), "admin-1", validCreateRequest())
	require.NoError(t, err)

	f.expectTx()
	newPrice := 19.99
	updated, err := f.svc.UpdateProduct(context.Background(), product.ID, UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 19.99, updated.Price)
	// Untouched fields survive.
	assert.Equal(t, "Vintage Shirt", updated.Name)
	assert.Equal(t, "vintage-shirt", updated.Slug)
}

func TestProductService_UpsertReview_RefreshesAggregates(t *testing.T) {
	f := newProductFixture(t)
	f.expectTx()

	product, err := f.svc.CreateProduct(context.Background(), "admin-1", validCreateRequest())
	require.NoError(t, err)

	f.expectTx()
	_, err = f.svc.UpsertReview(context.Background(), "user-1", ReviewRequest{ProductID: product.ID, Rating: 5, Comment: "great"})
	require.NoError(t, err)

	f.expectTx()
	_, err = f.svc.UpsertReview(context.Background(), "user-2", ReviewRequest{ProductID: product.ID, Rating: 3, Comment: "okay"})
	require.NoError(t, err)

	stored, err := f.repo.FindProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.NumOfReviews)
	assert.Equal(t, 4.0, stored.Ratings)

	// Same user reviewing again replaces, not duplicates.
	f.expectTx()
	_, err = f.svc.UpsertReview(context.Background(), "user-1", ReviewRequest{ProductID: product.ID, Rating: 1, Comment: "changed my mind"})
	require.NoError(t, err)

	stored, err = f.repo.FindProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.NumOfReviews)
	assert.Equal(t, 2.0, stored.Ratings)
}

func TestProductService_UpsertReview_Validation(t *testing.T) {
	f := newProductFixture(t)
	f.expectTx()

	product, err := f.svc.CreateProduct(context.Background(), "admin-1", validCreateRequest())
	require.NoError(t, err)

	_, err = f.svc.UpsertReview(context.Background(), "user-1", ReviewRequest{ProductID: product.ID, Rating: 6, Comment: "too good"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.UpsertReview(context.Background(), "user-1", ReviewRequest{ProductID: "missing", Rating: 4, Comment: "hm"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProductService_DeleteReview(t *testing.T) {
	f := newProductFixture(t)
	f.expectTx()

	product, err := f.svc.CreateProduct(context.Background(), "admin-1", validCreateRequest())
	require.NoError(t, err)

	f.expectTx()
	_, err = f.svc.UpsertReview(context.Background(), "user-1", ReviewRequest{ProductID: product.ID, Rating: 5, Comment: "great"})
	require.NoError(t, err)

	f.expectTx()
	require.NoError(t, f.svc.DeleteReview(context.Background(), "user-1", product.ID))

	stored, err := f.repo.FindProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.NumOfReviews)
	assert.Equal(t, 0.0, stored.Ratings)
}

func TestProductService_ListProducts_UnknownCategory(t *testing.T) {
	f := newProductFixture(t)

	_, _, err := f.svc.ListProducts(context.Background(), 1, 20, "Socks")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestProductService_GetProductDetails(t *testing.T) {
	f := newProductFixture(t)
	f.expectTx()

	req := validCreateRequest()
	req.Images = []model.ProductImage{{PublicID: "img_1", URL: "https://cdn.example.com/img_1.jpg"}}
	product, err := f.svc.CreateProduct(context.Background(), "admin-1", req)
	require.NoError(t, err)

	f.expectTx()
	_, err = f.svc.UpsertReview(context.Background(), "user-1", ReviewRequest{ProductID: product.ID, Rating: 5, Comment: "great"})
	require.NoError(t, err)

	details, err := f.svc.GetProductDetails(context.Background(), "vintage-shirt")
	require.NoError(t, err)
	assert.Len(t, details.Images, 1)
	assert.Len(t, details.Reviews, 1)

	_, err = f.svc.GetProductDetails(context.Background(), "missing-slug")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
