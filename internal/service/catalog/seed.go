package catalog

import "github.com/mamadbah2/oilledger/internal/domain/models"

// SeedData is the reference data inserted by Seed.
type SeedData struct {
	Products []models.Product
	Routes   []models.Route
	Vehicles []models.Vehicle
}

// DefaultSeed returns the distributor's product list, delivery lines and fleet.
func DefaultSeed() SeedData {
	type p struct {
		name     string
		factor   float64
		unit     models.UnitType
		category string
	}
	products := []p{
		{"Sunflower Oil 30kg Can", 30, models.UnitKilogram, "Sunflower"},
		{"Sunflower Oil 15kg Can", 15, models.UnitKilogram, "Sunflower"},
		{"Sunflower Oil 15L Tin", 13.6, models.UnitLitre, "Sunflower"},
		{"Sunflower Gold 5L Box", 4.5, models.UnitLitre, "Sunflower"},
		{"Sunflower Gold 1L Box", 0.9, models.UnitLitre, "Sunflower"},
		{"Sunflower Gold 500ml Box", 0.45, models.UnitMillilitre, "Sunflower"},
		{"Sunflower Gold 200ml Box", 0.18, models.UnitMillilitre, "Sunflower"},
		{"Sunflower 850ml", 0.85, models.UnitMillilitre, "Sunflower"},
		{"Sunflower 425ml", 0.425, models.UnitMillilitre, "Sunflower"},
		{"Palm Oil 30kg Can", 30, models.UnitKilogram, "Palm"},
		{"Palm Oil 15kg Can", 15, models.UnitKilogram, "Palm"},
		{"Palm Oil 15L Tin", 13.6, models.UnitLitre, "Palm"},
		{"Palmstar 1L Box", 0.9, models.UnitLitre, "Palm"},
		{"Palmstar 500ml Box", 0.45, models.UnitMillilitre, "Palm"},
		{"Palmstar 850ml", 0.85, models.UnitMillilitre, "Palm"},
		{"Palmstar 425ml", 0.425, models.UnitMillilitre, "Palm"},
		{"Lamp Oil 15L Tin", 13.6, models.UnitLitre, "Lamp"},
		{"Lamp Oil 5L Bottle", 4.5, models.UnitLitre, "Lamp"},
		{"Lamp Oil 1L Pouch", 0.9, models.UnitLitre, "Lamp"},
		{"Lamp Oil 500ml Pouch", 0.45, models.UnitMillilitre, "Lamp"},
	}
	routes := []string{"Uthukottai", "Arakonam", "Acharapakkam", "Kalpakkam", "Poonamallee", "Ponneri", "ECR"}
	vehicles := []string{"2259", "5149", "3083", "4080", "0456", "4567"}

	var data SeedData
	for i, prod := range products {
		data.Products = append(data.Products, models.Product{
			ID:               int64(i + 1),
			Name:             prod.name,
			Category:         prod.category,
			UnitType:         prod.unit,
			ConversionFactor: prod.factor,
			IsActive:         true,
		})
	}
	for i, name := range routes {
		data.Routes = append(data.Routes, models.Route{ID: int64(i + 1), Name: name, IsActive: true})
	}
	for i, number := range vehicles {
		data.Vehicles = append(data.Vehicles, models.Vehicle{ID: int64(i + 1), Number: number, IsActive: true})
	}
	return data
}
