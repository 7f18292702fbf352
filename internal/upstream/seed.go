package upstream

import (
	"gorm.io/gorm"

	"github.com/akosarev/storefront/internal/models"
)

// SeedDemo fills an empty database with a small catalog so a fresh dev
// setup has something to add to a cart.
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&ProductRecord{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []ProductRecord{
		{
			Name:  "Canvas Tote Bag",
			Price: 19.90,
			Images: []models.Image{
				{URL: "https://cdn.example.com/tote-front.jpg", Title: "front"},
				{URL: "https://cdn.example.com/tote-side.jpg", Title: "side"},
			},
		},
		{
			Name:  "Ceramic Mug",
			Price: 12.50,
			Images: []models.Image{
				{URL: "https://cdn.example.com/mug.jpg", Title: "mug"},
			},
		},
		{
			Name:  "Notebook A5",
			Price: 7.25,
		},
	}
	return db.Create(&products).Error
}
