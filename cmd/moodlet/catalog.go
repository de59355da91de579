package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/moodlet/moodlet-backend/internal/config"
	"github.com/moodlet/moodlet-backend/internal/model"
	"github.com/moodlet/moodlet-backend/internal/service"
	"github.com/moodlet/moodlet-backend/internal/style"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the furniture catalog",
	}

	cmd.AddCommand(catalogImportCmd())

	return cmd
}

func catalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import furniture products from a JSON file",
		Long: `Import a JSON array of furniture products. Each product names its style
either by theme id ("theme_id": 3) or by style code ("style": "NATURAL_WOOD").

  [{"name": "oak bed", "category": "bed_frame", "style": "NATURAL_WOOD",
    "score": 0.92, "lowest_price": 259000,
    "prices": [{"mall_name": "shop", "mall_price": "259,000"}]}]`,
		Args: cobra.ExactArgs(1),
		RunE: runCatalogImport,
	}
}

type catalogPrice struct {
	MallName  string `json:"mall_name"`
	MallPrice string `json:"mall_price"`
	ShipFee   string `json:"ship_fee"`
	MallURL   string `json:"mall_url"`
}

type catalogRecord struct {
	ThemeID      *int64         `json:"theme_id"`
	Score        *float64       `json:"score"`
	LowestPrice  *int64         `json:"lowest_price"`
	HighestPrice *int64         `json:"highest_price"`
	Style        string         `json:"style"`
	Name         string         `json:"name"`
	DetailURL    string         `json:"detail_url"`
	ImageURL     string         `json:"image_url"`
	Category     string         `json:"category"`
	BedSizeCode  string         `json:"bed_size_code"`
	Material     string         `json:"material"`
	Color        string         `json:"color"`
	Prices       []catalogPrice `json:"prices"`
	Width        float64        `json:"width"`
	Depth        float64        `json:"depth"`
	Height       float64        `json:"height"`
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	f, err := os.Open(config.ExpandPath(args[0]))
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	products, err := readCatalog(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStorage(ctx, settings.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := importProducts(ctx, store, products); err != nil {
		return err
	}

	slog.Info("Catalog imported", "products", len(products), "database", settings.Database.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", len(products))
	return nil
}

// importProducts saves every product in one transaction.
func importProducts(ctx context.Context, store service.Storage, products []*model.FurnitureProduct) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, p := range products {
		if err := tx.SaveFurniture(ctx, p); err != nil {
			return fmt.Errorf("product %d (%s): %w", i+1, p.Name, err)
		}
	}
	return tx.Commit()
}

// readCatalog decodes and validates catalog records.
func readCatalog(r io.Reader) ([]*model.FurnitureProduct, error) {
	var records []catalogRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	products := make([]*model.FurnitureProduct, 0, len(records))
	for i, rec := range records {
		p, err := rec.toProduct()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (rec catalogRecord) toProduct() (*model.FurnitureProduct, error) {
	themeID := rec.ThemeID
	if rec.Style != "" {
		id, ok := style.ThemeID(rec.Style)
		if !ok {
			return nil, fmt.Errorf("unknown style %q", rec.Style)
		}
		if themeID != nil && *themeID != id {
			return nil, fmt.Errorf("style %s does not match theme_id %d", rec.Style, *themeID)
		}
		themeID = &id
	}

	p := &model.FurnitureProduct{
		ThemeID:      themeID,
		Score:        rec.Score,
		LowestPrice:  rec.LowestPrice,
		HighestPrice: rec.HighestPrice,
		Name:         rec.Name,
		DetailURL:    rec.DetailURL,
		ImageURL:     rec.ImageURL,
		Category:     rec.Category,
		BedSizeCode:  rec.BedSizeCode,
		Material:     rec.Material,
		Color:        rec.Color,
		Width:        rec.Width,
		Depth:        rec.Depth,
		Height:       rec.Height,
	}
	for _, price := range rec.Prices {
		p.Prices = append(p.Prices, model.FurniturePrice{
			MallName:  price.MallName,
			MallPrice: price.MallPrice,
			ShipFee:   price.ShipFee,
			MallURL:   price.MallURL,
		})
	}
	return p, nil
}
