package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"aura-hype/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, input *domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input *domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, criteria domain.ListCriteria) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row scanner) (*domain.Product, error) {
	product := &domain.Product{}
	var tags []byte

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Image,
		&product.Brand,
		&product.Category,
		&product.Gender,
		&product.Description,
		&tags,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &product.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of product %d: %w", product.ID, err)
		}
	}
	if len(product.Tags) == 0 {
		product.Tags = nil
	}
	product.ExtraImages = []*domain.ExtraImage{}

	return product, nil
}

// encodeTags serializes tags for the JSONB column. An empty list is stored as NULL.
func encodeTags(tags []string) (interface{}, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(encoded), nil
}

func (r *productRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertExtraImages(ctx context.Context, tx *sql.Tx, productID int64, images []string) error {
	if len(images) == 0 {
		return nil
	}

	query, args := buildExtraImagesInsert(productID, images)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert extra images: %w", err)
	}
	return nil
}

// Create inserts the product row and then its extra images, returning the stored product
func (r *productRepository) Create(ctx context.Context, input *domain.ProductInput) (*domain.Product, error) {
	tags, err := encodeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO products (name, price, image, brand, category, gender, description, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(
			ctx,
			query,
			input.Name,
			input.Price,
			input.Image,
			input.Brand,
			input.Category,
			input.Gender,
			input.Description,
			tags,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		return insertExtraImages(ctx, tx, id, input.ExtraImages)
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Update overwrites every mutable field and replaces the extra image set
func (r *productRepository) Update(ctx context.Context, id int64, input *domain.ProductInput) (*domain.Product, error) {
	tags, err := encodeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET name = $2, price = $3, image = $4, brand = $5,
		    category = $6, gender = $7, description = $8, tags = $9
		WHERE id = $1
	`

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			query,
			id,
			input.Name,
			input.Price,
			input.Image,
			input.Brand,
			input.Category,
			input.Gender,
			input.Description,
			tags,
		)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrProductNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM extra_images WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear extra images: %w", err)
		}

		return insertExtraImages(ctx, tx, id, input.ExtraImages)
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Delete removes the extra images of a product and then the product itself.
// It reports the number of product rows removed; zero means there was nothing to delete.
func (r *productRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var rowsAffected int64

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM extra_images WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete extra images: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return rowsAffected, nil
}

// FindByID retrieves a product and its extra images
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := r.attachExtraImages(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}

	return product, nil
}

// List retrieves the products matching every supplied criterion, newest first
func (r *productRepository) List(ctx context.Context, criteria domain.ListCriteria) ([]*domain.Product, error) {
	query, args := buildListQuery(criteria)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachExtraImages(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// attachExtraImages loads the extra images of all products with a single query
func (r *productRepository) attachExtraImages(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, product := range products {
		byID[product.ID] = product
		ids = append(ids, product.ID)
	}

	query := `
		SELECT id, image, product_id
		FROM extra_images
		WHERE product_id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load extra images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		extra := &domain.ExtraImage{}
		if err := rows.Scan(&extra.ID, &extra.Image, &extra.ProductID); err != nil {
			return fmt.Errorf("failed to scan extra image: %w", err)
		}
		if product, ok := byID[extra.ProductID]; ok {
			product.ExtraImages = append(product.ExtraImages, extra)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating extra images: %w", err)
	}

	return nil
}
