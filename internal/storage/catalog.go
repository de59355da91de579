package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
)

const furnitureColumns = `product_id, name, detail_url, image_url, category, width, depth, height,
	bed_size_code, material, color, style_id, score, lowest_price, highest_price, created_at`

// GetStyleTheme retrieves a style theme by id.
func (s *SQLiteStorage) GetStyleTheme(ctx context.Context, id int64) (*model.StyleTheme, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "themeID"); err != nil {
		return nil, err
	}

	var (
		theme       model.StyleTheme
		description sql.NullString
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT style_id, style_name, description FROM style_theme WHERE style_id = ?
	`, id).Scan(&theme.ID, &theme.Name, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("style theme %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get style theme: %w", err)
	}
	theme.Description = description.String

	return &theme, nil
}

// ListStyleThemes returns every style theme ordered by id.
func (s *SQLiteStorage) ListStyleThemes(ctx context.Context) ([]model.StyleTheme, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT style_id, style_name, description FROM style_theme ORDER BY style_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query style themes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var themes []model.StyleTheme
	for rows.Next() {
		var (
			theme       model.StyleTheme
			description sql.NullString
		)
		if err := rows.Scan(&theme.ID, &theme.Name, &description); err != nil {
			return nil, fmt.Errorf("failed to scan style theme: %w", err)
		}
		theme.Description = description.String
		themes = append(themes, theme)
	}

	return themes, rows.Err()
}

// SaveFurniture inserts a catalog product together with its mall prices.
func (s *SQLiteStorage) SaveFurniture(ctx context.Context, product *model.FurnitureProduct) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFurniture(product); err != nil {
		return err
	}

	return s.withTx(ctx, func(q querier) error {
		if product.CreatedAt.IsZero() {
			product.CreatedAt = time.Now().UTC()
		}

		result, err := q.ExecContext(ctx, `
			INSERT INTO furniture_product
				(name, detail_url, image_url, category, width, depth, height,
				 bed_size_code, material, color, style_id, score, lowest_price, highest_price, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, product.Name, nullString(product.DetailURL), nullString(product.ImageURL), nullString(product.Category),
			product.Width, product.Depth, product.Height,
			nullString(product.BedSizeCode), nullString(product.Material), nullString(product.Color),
			nullInt64(product.ThemeID), nullFloat64(product.Score),
			nullInt64(product.LowestPrice), nullInt64(product.HighestPrice), product.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert furniture: %w", err)
		}
		if product.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get furniture id: %w", err)
		}

		for i := range product.Prices {
			price := &product.Prices[i]
			price.ProductID = product.ID
			result, err := q.ExecContext(ctx, `
				INSERT INTO furniture_price (product_id, mall_name, mall_price, ship_fee, mall_url)
				VALUES (?, ?, ?, ?, ?)
			`, product.ID, price.MallName, price.MallPrice, price.ShipFee, price.MallURL)
			if err != nil {
				return fmt.Errorf("failed to insert furniture price: %w", err)
			}
			if price.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get furniture price id: %w", err)
			}
		}
		return nil
	})
}

// ListFurnitureCategories returns the distinct categories of a theme's products.
func (s *SQLiteStorage) ListFurnitureCategories(ctx context.Context, themeID int64) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(themeID, "themeID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT DISTINCT category
		FROM furniture_product
		WHERE style_id = ? AND category IS NOT NULL AND category != ''
		ORDER BY category
	`, themeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query furniture categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// ListTopFurniture returns the best scored products of a theme in one category,
// newest first among equal scores.
func (s *SQLiteStorage) ListTopFurniture(ctx context.Context, themeID int64, category string, limit int) ([]model.FurnitureProduct, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(themeID, "themeID"); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrInvalidQueryLimit
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+furnitureColumns+`
		FROM furniture_product
		WHERE style_id = ? AND category = ?
		ORDER BY score IS NULL, score DESC, created_at DESC, product_id DESC
		LIMIT ?
	`, themeID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top furniture: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFurnitureRows(rows)
}

// ListFurnitureByCategories returns every product whose category is one of categories.
func (s *SQLiteStorage) ListFurnitureByCategories(ctx context.Context, categories []string) ([]model.FurnitureProduct, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return []model.FurnitureProduct{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = c
	}

	// #nosec G202 -- placeholders only, values are bound
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+furnitureColumns+`
		FROM furniture_product
		WHERE category IN (`+placeholders+`)
		ORDER BY product_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query furniture: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFurnitureRows(rows)
}

// GetFurnitureDetail retrieves a product together with its mall prices.
func (s *SQLiteStorage) GetFurnitureDetail(ctx context.Context, id int64) (*model.FurnitureProduct, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "productID"); err != nil {
		return nil, err
	}

	product, err := scanFurniture(s.q.QueryRowContext(ctx, `
		SELECT `+furnitureColumns+` FROM furniture_product WHERE product_id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("furniture %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get furniture: %w", err)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT price_id, product_id, mall_name, mall_price, ship_fee, mall_url
		FROM furniture_price
		WHERE product_id = ?
		ORDER BY price_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query furniture prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	product.Prices = []model.FurniturePrice{}
	for rows.Next() {
		var (
			p                                     model.FurniturePrice
			mallName, mallPrice, shipFee, mallURL sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ProductID, &mallName, &mallPrice, &shipFee, &mallURL); err != nil {
			return nil, fmt.Errorf("failed to scan furniture price: %w", err)
		}
		p.MallName = mallName.String
		p.MallPrice = mallPrice.String
		p.ShipFee = shipFee.String
		p.MallURL = mallURL.String
		product.Prices = append(product.Prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return product, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFurniture(row rowScanner) (*model.FurnitureProduct, error) {
	var (
		p                                  model.FurnitureProduct
		detailURL, imageURL, category      sql.NullString
		bedSize, material, color           sql.NullString
		width, depth, height, score        sql.NullFloat64
		themeID, lowestPrice, highestPrice sql.NullInt64
		createdAt                          sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Name, &detailURL, &imageURL, &category, &width, &depth, &height,
		&bedSize, &material, &color, &themeID, &score, &lowestPrice, &highestPrice, &createdAt); err != nil {
		return nil, err
	}

	p.DetailURL = detailURL.String
	p.ImageURL = imageURL.String
	p.Category = category.String
	p.Width = width.Float64
	p.Depth = depth.Float64
	p.Height = height.Float64
	p.BedSizeCode = bedSize.String
	p.Material = material.String
	p.Color = color.String
	p.CreatedAt = createdAt.Time
	if themeID.Valid {
		p.ThemeID = &themeID.Int64
	}
	if score.Valid {
		p.Score = &score.Float64
	}
	if lowestPrice.Valid {
		p.LowestPrice = &lowestPrice.Int64
	}
	if highestPrice.Valid {
		p.HighestPrice = &highestPrice.Int64
	}

	return &p, nil
}

func scanFurnitureRows(rows *sql.Rows) ([]model.FurnitureProduct, error) {
	products := []model.FurnitureProduct{}
	for rows.Next() {
		p, err := scanFurniture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan furniture: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
