package postgres

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/gigboard/internal/domain/product"
)

// ProductRepository implements product.Repository.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products
		(product_id, owner_id, title, description, images, base_price, current_price, status, auction_ends_at, highest_bidder, sold_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`, p.ProductID, p.OwnerID, p.Title, p.Description, p.Images, p.BasePrice, p.CurrentPrice, p.Status, p.AuctionEndsAt, p.HighestBidder, p.SoldAt, p.CreatedAt, p.UpdatedAt)
	return row.Scan(&p.ID)
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products SET title=$1, description=$2, images=$3, base_price=$4, current_price=$5, status=$6,
			auction_ends_at=$7, highest_bidder=$8, sold_at=$9, updated_at=$10
		WHERE product_id=$11
	`, p.Title, p.Description, p.Images, p.BasePrice, p.CurrentPrice, p.Status,
		p.AuctionEndsAt, p.HighestBidder, p.SoldAt, p.UpdatedAt, p.ProductID)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, productID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE product_id=$1`, productID)
	return err
}

func (r *ProductRepository) GetByID(ctx context.Context, productID uuid.UUID) (*product.Product, error) {
	row := r.pool.QueryRow(ctx, productSelect+` WHERE product_id=$1`, productID)
	return scanProduct(row)
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter, limit, offset int) ([]*product.Product, error) {
	query := productSelect
	args := []interface{}{}
	where := ""
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		and("status=$" + strconv.Itoa(len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		and("owner_id=$" + strconv.Itoa(len(args)))
	}
	query += where + " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const productSelect = `
	SELECT id, product_id, owner_id, title, description, images, base_price, current_price, status,
		auction_ends_at, highest_bidder, sold_at, created_at, updated_at
	FROM products`

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	if err := row.Scan(&p.ID, &p.ProductID, &p.OwnerID, &p.Title, &p.Description, &p.Images, &p.BasePrice, &p.CurrentPrice, &p.Status,
		&p.AuctionEndsAt, &p.HighestBidder, &p.SoldAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
