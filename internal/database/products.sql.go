package database

import (
	"context"
	"time"
)

const listProducts = `-- name: ListProducts :many
SELECT
    p.id::text,
    p.sku,
    p.name,
    p.description,
    p.price::float8,
    p.hide_price,
    p.stock_status,
    p.category_id::text,
    c.name AS category_name,
    COALESCE((SELECT array_agg(f.text ORDER BY f.position) FROM product_features f WHERE f.product_id = p.id), '{}')::text[] AS features,
    COALESCE((SELECT array_agg(i.url ORDER BY i.position) FROM product_images i WHERE i.product_id = p.id), '{}')::text[] AS images,
    p.created_at,
    p.updated_at
FROM products p
JOIN categories c ON c.id = p.category_id
ORDER BY p.created_at, p.sku
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Sku,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.HidePrice,
			&i.StockStatus,
			&i.CategoryID,
			&i.CategoryName,
			&i.Features,
			&i.Images,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertProduct = `-- name: InsertProduct :one
INSERT INTO products (
    id, sku, name, description, price, hide_price, stock_status, category_id
) VALUES (
    $1::uuid, $2, $3, $4, $5, $6, $7, $8::uuid
)
RETURNING (SELECT name FROM categories WHERE id = category_id) AS category_name, created_at, updated_at
`

type InsertProductParams struct {
	ID          string
	Sku         string
	Name        string
	Description string
	Price       float64
	HidePrice   bool
	StockStatus string
	CategoryID  string
}

type SaveProductRow struct {
	CategoryName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (SaveProductRow, error) {
	row := q.db.QueryRow(ctx, insertProduct,
		arg.ID,
		arg.Sku,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.HidePrice,
		arg.StockStatus,
		arg.CategoryID,
	)
	var i SaveProductRow
	err := row.Scan(&i.CategoryName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products
SET sku = $2,
    name = $3,
    description = $4,
    price = $5,
    hide_price = $6,
    stock_status = $7,
    category_id = $8::uuid,
    updated_at = now()
WHERE id = $1::uuid
RETURNING (SELECT name FROM categories WHERE id = category_id) AS category_name, created_at, updated_at
`

type UpdateProductParams struct {
	ID          string
	Sku         string
	Name        string
	Description string
	Price       float64
	HidePrice   bool
	StockStatus string
	CategoryID  string
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (SaveProductRow, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.Sku,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.HidePrice,
		arg.StockStatus,
		arg.CategoryID,
	)
	var i SaveProductRow
	err := row.Scan(&i.CategoryName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const deleteProductFeatures = `-- name: DeleteProductFeatures :exec
DELETE FROM product_features WHERE product_id = $1::uuid
`

func (q *Queries) DeleteProductFeatures(ctx context.Context, productID string) error {
	_, err := q.db.Exec(ctx, deleteProductFeatures, productID)
	return err
}

const deleteProductImages = `-- name: DeleteProductImages :exec
DELETE FROM product_images WHERE product_id = $1::uuid
`

func (q *Queries) DeleteProductImages(ctx context.Context, productID string) error {
	_, err := q.db.Exec(ctx, deleteProductImages, productID)
	return err
}

const insertProductFeature = `-- name: InsertProductFeature :exec
INSERT INTO product_features (product_id, position, text)
VALUES ($1::uuid, $2, $3)
`

type InsertProductFeatureParams struct {
	ProductID string
	Position  int32
	Text      string
}

func (q *Queries) InsertProductFeature(ctx context.Context, arg InsertProductFeatureParams) error {
	_, err := q.db.Exec(ctx, insertProductFeature, arg.ProductID, arg.Position, arg.Text)
	return err
}

const insertProductImage = `-- name: InsertProductImage :exec
INSERT INTO product_images (product_id, position, url)
VALUES ($1::uuid, $2, $3)
`

type InsertProductImageParams struct {
	ProductID string
	Position  int32
	Url       string
}

func (q *Queries) InsertProductImage(ctx context.Context, arg InsertProductImageParams) error {
	_, err := q.db.Exec(ctx, insertProductImage, arg.ProductID, arg.Position, arg.Url)
	return err
}
