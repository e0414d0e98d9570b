package main

import (
	"context"
	"log"
	"time"

	"craftstore/config"
	"craftstore/internal/models"
	"craftstore/internal/store"

	"github.com/shopspring/decimal"
)

// Seed tool: applies the schema and replaces the product catalog with the
// demo products. Destructive; intended for development environments.
func main() {
	cfg := config.Load()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if err := db.ReplaceProducts(ctx, seedProducts()); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seed complete")
}

func seedProducts() []models.Product {
	return []models.Product{
		{
			Title:          "Custom Name Board",
			Slug:           "custom-name-board",
			Description:    "Laser-cut customizable name board",
			Price:          decimal.NewFromInt(899),
			Category:       "nameboard",
			IsCustomizable: true,
			InventoryCount: 25,
			CustomizationSchema: models.CustomizationSchema{
				"text": {Kind: models.FieldKindText, Label: "Text", Default: "Your Name"},
				"fontFamily": {
					Kind:    models.FieldKindSelect,
					Label:   "Font",
					Options: []string{"serif", "sans-serif", "monospace"},
					Default: "serif",
				},
				"fontSize": {
					Kind:    models.FieldKindRange,
					Label:   "Size",
					Min:     floatPtr(18),
					Max:     floatPtr(120),
					Default: 48,
				},
				"color": {Kind: models.FieldKindColor, Label: "Color", Default: "#111827"},
				"material": {
					Kind:    models.FieldKindSelect,
					Label:   "Material",
					Options: []string{"Plywood", "Acrylic", "Metal"},
					Default: "Plywood",
				},
			},
		},
		{
			Title:          "Engraved Gift Box",
			Slug:           "engraved-gift-box",
			Description:    "Personalized gift box",
			Price:          decimal.NewFromInt(499),
			Category:       "gift",
			IsCustomizable: true,
			InventoryCount: 40,
			CustomizationSchema: models.CustomizationSchema{
				"text": {Kind: models.FieldKindText, Label: "Message", Default: "Happy Birthday"},
				"fontFamily": {
					Kind:    models.FieldKindSelect,
					Label:   "Font",
					Options: []string{"serif", "sans-serif"},
					Default: "sans-serif",
				},
				"color": {Kind: models.FieldKindColor, Label: "Ink Color", Default: "#111827"},
			},
		},
		{
			Title:          "Precision Gear",
			Slug:           "precision-gear",
			Description:    "High precision component",
			Price:          decimal.NewFromInt(1299),
			Category:       "component",
			IsCustomizable: false,
			InventoryCount: 10,
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
