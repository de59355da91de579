// Package recommend serves furniture recommendations by style theme and the
// catalog listing by category.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
	"github.com/moodlet/moodlet-backend/internal/service"
)

// PerCategory is how many products are recommended per category.
const PerCategory = 6

// User facing messages.
const (
	msgAnalysisRequired = "final-analysis가 먼저 필요합니다."
	msgUnknownTheme     = "존재하지 않는 테마 ID"
	msgUnknownProduct   = "Product not found"
	msgNoStyleItems     = "해당 스타일 추천 가구가 없습니다."
	msgNoCategoryItems  = "해당 카테고리에는 상품이 없습니다."
)

// Item is a recommended product.
type Item struct {
	LowestPrice *int64   `json:"lowest_price"`
	Score       *float64 `json:"score"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url"`
	DetailURL   string   `json:"detail_url"`
	Category    string   `json:"category"`
	ProductID   int64    `json:"product_id"`
}

// SurveyRecommendation groups the top products of a session's main style by category.
type SurveyRecommendation struct {
	Categories map[string][]Item `json:"categories"`
	Message    string            `json:"message,omitempty"`
	SessionID  int64             `json:"session_id"`
	StyleID    int64             `json:"style_id"`
}

// ThemeDetail describes a theme and the categories it has products in.
type ThemeDetail struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	ThemeID     int64    `json:"themeId"`
}

// ThemeItems lists the top products of one theme category.
type ThemeItems struct {
	Category string `json:"category"`
	Message  string `json:"message,omitempty"`
	Items    []Item `json:"items"`
	ThemeID  int64  `json:"themeId"`
	Count    int    `json:"count,omitempty"`
}

// Summary is a product in the category listing.
type Summary struct {
	LowestPrice  *int64 `json:"lowest_price"`
	HighestPrice *int64 `json:"highest_price"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url"`
	DetailURL    string `json:"detail_url"`
	Category     string `json:"category"`
	ProductID    int64  `json:"product_id"`
}

// MallPrice is one shop's offer in a product detail.
type MallPrice struct {
	MallName  string `json:"mall_name"`
	MallPrice string `json:"mall_price"`
	ShipFee   string `json:"ship_fee"`
	MallURL   string `json:"mall_url"`
}

// Detail is the full product view.
type Detail struct {
	Summary
	BedSizeCode string      `json:"bed_size_code"`
	Material    string      `json:"material"`
	Color       string      `json:"color"`
	Prices      []MallPrice `json:"prices"`
	Width       float64     `json:"width"`
	Depth       float64     `json:"depth"`
	Height      float64     `json:"height"`
}

// Service answers recommendation and catalog queries.
type Service struct {
	storage service.Storage
	logger  *slog.Logger
}

// NewService creates a recommendation service over storage.
func NewService(storage service.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{storage: storage, logger: logger}
}

// FromSurvey recommends the top products per category for the rank 1 style of
// a finished session.
func (s *Service) FromSurvey(ctx context.Context, sessionID int64) (*SurveyRecommendation, error) {
	top, err := s.storage.GetTopStyleResult(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError(msgAnalysisRequired, err)
		}
		return nil, err
	}

	categories, err := s.storage.ListFurnitureCategories(ctx, top.ThemeID)
	if err != nil {
		return nil, err
	}

	rec := &SurveyRecommendation{
		SessionID:  sessionID,
		StyleID:    top.ThemeID,
		Categories: make(map[string][]Item, len(categories)),
	}
	if len(categories) == 0 {
		rec.Message = msgNoStyleItems
		return rec, nil
	}

	for _, category := range categories {
		products, err := s.storage.ListTopFurniture(ctx, top.ThemeID, category, PerCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s recommendations: %w", category, err)
		}
		if len(products) > 0 {
			rec.Categories[category] = toItems(products)
		}
	}

	s.logger.Debug("survey recommendations built",
		"session_id", sessionID,
		"style_id", top.ThemeID,
		"categories", len(rec.Categories))
	return rec, nil
}

// Theme returns a theme with its furniture categories.
func (s *Service) Theme(ctx context.Context, themeID int64) (*ThemeDetail, error) {
	theme, err := s.theme(ctx, themeID)
	if err != nil {
		return nil, err
	}

	categories, err := s.storage.ListFurnitureCategories(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}

	return &ThemeDetail{
		ThemeID:     theme.ID,
		Name:        theme.Name,
		Description: theme.Description,
		Categories:  categories,
	}, nil
}

// ThemeCategory returns the top products of a theme in one category.
func (s *Service) ThemeCategory(ctx context.Context, themeID int64, category string) (*ThemeItems, error) {
	if _, err := s.theme(ctx, themeID); err != nil {
		return nil, err
	}

	products, err := s.storage.ListTopFurniture(ctx, themeID, category, PerCategory)
	if err != nil {
		return nil, err
	}

	out := &ThemeItems{ThemeID: themeID, Category: category, Items: toItems(products)}
	if len(products) == 0 {
		out.Message = msgNoCategoryItems
	} else {
		out.Count = len(products)
	}
	return out, nil
}

// Furniture lists products of a main category, or of a single sub category
// when sub is set. Unknown main categories yield an empty list.
func (s *Service) Furniture(ctx context.Context, main, sub string) ([]Summary, error) {
	subs, ok := SubCategories(main)
	if !ok {
		return []Summary{}, nil
	}
	if sub != "" {
		subs = []string{sub}
	}

	products, err := s.storage.ListFurnitureByCategories(ctx, subs)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(products))
	for i := range products {
		out = append(out, toSummary(&products[i]))
	}
	return out, nil
}

// FurnitureDetail returns a product with its mall prices.
func (s *Service) FurnitureDetail(ctx context.Context, productID int64) (*Detail, error) {
	p, err := s.storage.GetFurnitureDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError(msgUnknownProduct, err)
		}
		return nil, err
	}

	d := &Detail{
		Summary:     toSummary(p),
		Width:       p.Width,
		Depth:       p.Depth,
		Height:      p.Height,
		BedSizeCode: p.BedSizeCode,
		Material:    p.Material,
		Color:       p.Color,
		Prices:      make([]MallPrice, 0, len(p.Prices)),
	}
	for _, price := range p.Prices {
		d.Prices = append(d.Prices, MallPrice{
			MallName:  price.MallName,
			MallPrice: price.MallPrice,
			ShipFee:   price.ShipFee,
			MallURL:   price.MallURL,
		})
	}
	return d, nil
}

func (s *Service) theme(ctx context.Context, themeID int64) (*model.StyleTheme, error) {
	theme, err := s.storage.GetStyleTheme(ctx, themeID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError(msgUnknownTheme, err)
		}
		return nil, err
	}
	return theme, nil
}

func toItems(products []model.FurnitureProduct) []Item {
	items := make([]Item, 0, len(products))
	for _, p := range products {
		items = append(items, Item{
			ProductID:   p.ID,
			Name:        p.Name,
			ImageURL:    p.ImageURL,
			DetailURL:   p.DetailURL,
			Category:    p.Category,
			LowestPrice: p.LowestPrice,
			Score:       p.Score,
		})
	}
	return items
}

func toSummary(p *model.FurnitureProduct) Summary {
	return Summary{
		ProductID:    p.ID,
		Name:         p.Name,
		ImageURL:     p.ImageURL,
		DetailURL:    p.DetailURL,
		Category:     p.Category,
		LowestPrice:  p.LowestPrice,
		HighestPrice: p.HighestPrice,
	}
}
