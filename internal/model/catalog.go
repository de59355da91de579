package model

import "time"

// StyleTheme is a persisted interior style theme.
type StyleTheme struct {
	Name        string
	Description string
	ID          int64
}

// FurnitureProduct is a catalog item tagged with a style theme.
type FurnitureProduct struct {
	CreatedAt    time.Time
	ThemeID      *int64
	Score        *float64
	LowestPrice  *int64
	HighestPrice *int64
	Name         string
	DetailURL    string
	ImageURL     string
	Category     string
	BedSizeCode  string
	Material     string
	Color        string
	Prices       []FurniturePrice
	Width        float64
	Depth        float64
	Height       float64
	ID           int64
}

// FurniturePrice is one mall's offer for a product.
type FurniturePrice struct {
	MallName  string
	MallPrice string
	ShipFee   string
	MallURL   string
	ID        int64
	ProductID int64
}

// User is an account created through an OAuth provider.
type User struct {
	CreatedAt     time.Time
	Email         string
	Name          string
	ImageURL      string
	OAuthProvider string
	OAuthSubject  string
	ID            int64
}
