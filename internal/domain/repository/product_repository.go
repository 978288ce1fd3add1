package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, tx *sql.Tx, product *model.Product) error
	UpdateProduct(ctx context.Context, tx *sql.Tx, product *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	FindProductByID(ctx context.Context, id string) (*model.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProducts(ctx context.Context, limit, offset int, category model.ProductCategory) ([]model.Product, int, error)

	AddImagesToProduct(ctx context.Context, tx *sql.Tx, productID string, images []model.ProductImage) error
	GetImagesByProductID(ctx context.Context, productID string) ([]model.ProductImage, error)
	DeleteImagesByProductID(ctx context.Context, tx *sql.Tx, productID string) error

	UpsertReview(ctx context.Context, tx *sql.Tx, review *model.Review) error
	DeleteReview(ctx context.Context, tx *sql.Tx, productID, userID string) error
	GetReviewsByProductID(ctx context.Context, productID string) ([]model.Review, error)

	// RefreshRatings recomputes the review count and average rating for a
	// product. Runs inside the same transaction as the review write so the
	// aggregates never drift from the rows they summarize.
	RefreshRatings(ctx context.Context, tx *sql.Tx, productID string) error
}

type pgProductRepository struct {
	db *sql.DB
}

func NewPgProductRepository(db *sql.DB) ProductRepository {
	return &pgProductRepository{db: db}
}

func (r *pgProductRepository) CreateProduct(ctx context.Context, tx *sql.Tx, p *model.Product) error {
	query := `INSERT INTO products (id, name, slug, description, price, category, seller, stock, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.ID, p.Name, p.Slug, p.Description, p.Price, p.Category, p.Seller, p.Stock, p.CreatedByID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.ID, p.Name, p.Slug, p.Description, p.Price, p.Category, p.Seller, p.Stock, p.CreatedByID)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("product with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProductRepository.CreateProduct: %w", err)
	}
	return nil
}

func (r *pgProductRepository) UpdateProduct(ctx context.Context, tx *sql.Tx, p *model.Product) error {
	query := `UPDATE products SET
	            name = $1, slug = $2, description = $3, price = $4, category = $5,
	            seller = $6, stock = $7, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $8`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.Name, p.Slug, p.Description, p.Price, p.Category, p.Seller, p.Stock, p.ID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.Name, p.Slug, p.Description, p.Price, p.Category, p.Seller, p.Stock, p.ID)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("product with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProductRepository.UpdateProduct: %w", err)
	}
	return nil
}

func (r *pgProductRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProductRepository.DeleteProduct: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgProductRepository.DeleteProduct rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

const productColumns = `id, name, slug, description, price, category, seller, stock,
	          ratings, num_of_reviews, created_by, created_at, updated_at`

func scanProduct(row *sql.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Category, &p.Seller, &p.Stock,
		&p.Ratings, &p.NumOfReviews, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepository) FindProductByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgProductRepository.FindProductByID: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) FindProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgProductRepository.FindProductBySlug: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) ListProducts(ctx context.Context, limit, offset int, category model.ProductCategory) ([]model.Product, int, error) {
	var baseQuery strings.Builder
	baseQuery.WriteString(`SELECT ` + productColumns + ` FROM products`)

	var countQuery strings.Builder
	countQuery.WriteString(`SELECT COUNT(*) FROM products`)

	var conditions []string
	var args []interface{}
	argID := 1

	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, category)
		argID++
	}

	if len(conditions) > 0 {
		whereClause := " WHERE " + strings.Join(conditions, " AND ")
		baseQuery.WriteString(whereClause)
		countQuery.WriteString(whereClause)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery.String(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProductRepository.ListProducts count: %w", err)
	}

	baseQuery.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProductRepository.ListProducts query: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Category, &p.Seller, &p.Stock,
			&p.Ratings, &p.NumOfReviews, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgProductRepository.ListProducts scan: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProductRepository.ListProducts rows.Err: %w", err)
	}

	return products, total, nil
}

func (r *pgProductRepository) AddImagesToProduct(ctx context.Context, tx *sql.Tx, productID string, images []model.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO product_images (id, product_id, public_id, url, sort_order) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("pgProductRepository.AddImagesToProduct prepare: %w", err)
	}
	defer stmt.Close()

	for _, img := range images {
		_, err := stmt.ExecContext(ctx, img.ID, productID, img.PublicID, img.URL, img.SortOrder)
		if err != nil {
			return fmt.Errorf("pgProductRepository.AddImagesToProduct exec for image %s: %w", img.ID, err)
		}
	}
	return nil
}

func (r *pgProductRepository) GetImagesByProductID(ctx context.Context, productID string) ([]model.ProductImage, error) {
	query := `SELECT id, product_id, public_id, url, sort_order
	          FROM product_images WHERE product_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("pgProductRepository.GetImagesByProductID query: %w", err)
	}
	defer rows.Close()

	var images []model.ProductImage
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.PublicID, &img.URL, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("pgProductRepository.GetImagesByProductID scan: %w", err)
		}
		images = append(images, img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProductRepository.GetImagesByProductID rows.Err: %w", err)
	}
	return images, nil
}

func (r *pgProductRepository) DeleteImagesByProductID(ctx context.Context, tx *sql.Tx, productID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("pgProductRepository.DeleteImagesByProductID: %w", err)
	}
	return nil
}

func (r *pgProductRepository) UpsertReview(ctx context.Context, tx *sql.Tx, review *model.Review) error {
	query := `INSERT INTO reviews (id, product_id, user_id, rating, comment)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (product_id, user_id)
	          DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = CURRENT_TIMESTAMP`
	_, err := tx.ExecContext(ctx, query, review.ID, review.ProductID, review.UserID, review.Rating, review.Comment)
	if err != nil {
		return fmt.Errorf("pgProductRepository.UpsertReview: %w", err)
	}
	return nil
}

func (r *pgProductRepository) DeleteReview(ctx context.Context, tx *sql.Tx, productID, userID string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE product_id = $1 AND user_id = $2`, productID, userID)
	if err != nil {
		return fmt.Errorf("pgProductRepository.DeleteReview: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgProductRepository.DeleteReview rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProductRepository) GetReviewsByProductID(ctx context.Context, productID string) ([]model.Review, error) {
	query := `SELECT rv.id, rv.product_id, rv.user_id, u.name, rv.rating, rv.comment, rv.created_at, rv.updated_at
	          FROM reviews rv
	          JOIN users u ON rv.user_id = u.id
	          WHERE rv.product_id = $1
	          ORDER BY rv.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("pgProductRepository.GetReviewsByProductID query: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgProductRepository.GetReviewsByProductID scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProductRepository.GetReviewsByProductID rows.Err: %w", err)
	}
	return reviews, nil
}

func (r *pgProductRepository) RefreshRatings(ctx context.Context, tx *sql.Tx, productID string) error {
	query := `UPDATE products SET
	            num_of_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = $1),
	            ratings = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = $1), 0),
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("pgProductRepository.RefreshRatings: %w", err)
	}
	return nil
}
