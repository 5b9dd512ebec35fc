package seed

import (
	"context"
	"fmt"

	"pizzeria-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type productWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type categoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

const imageBase = "https://images.pexels.com/photos/"

// Categories returns the seeded menu categories.
func Categories() []domain.Category {
	return []domain.Category{
		{
			ID:          "pizzas",
			Name:        "Pizzas",
			Description: "Our authentic Italian pizzas, made with hand-stretched dough and premium ingredients",
		},
	}
}

// Menu returns the seeded pizzas with their test-mode Stripe price ids.
func Menu() []domain.Product {
	items := []domain.Product{
		{
			ID:          "margherita",
			Name:        "Margherita",
			Description: "Classic pizza with tomato sauce, mozzarella, fresh basil, salt, and extra-virgin olive oil",
			Price:       decimal.RequireFromString("10.99"),
			PriceRef:    "price_1RWfcBD344N4aAburKgbcn6i",
			ProductRef:  "prod_SRYjlC9IQvf5zY",
			Image:       imageBase + "6605193/pexels-photo-6605193.jpeg",
			Popular:     true,
			Vegetarian:  true,
		},
		{
			ID:          "pepperoni",
			Name:        "Pepperoni",
			Description: "American favorite topped with tomato sauce, mozzarella, and crispy pepperoni",
			Price:       decimal.RequireFromString("12.99"),
			PriceRef:    "price_1RWfduD344N4aAbuyETyTNwS",
			ProductRef:  "prod_SRYl98m4X4mcKq",
			Image:       imageBase + "4109111/pexels-photo-4109111.jpeg",
			Popular:     true,
		},
		{
			ID:          "quattro-formaggi",
			Name:        "Quattro Formaggi",
			Description: "Four cheese pizza with mozzarella, gorgonzola, fontina, and parmigiano reggiano",
			Price:       decimal.RequireFromString("13.99"),
			PriceRef:    "price_1RWffaD344N4aAbuXkmQBmiP",
			ProductRef:  "prod_SRYnzxdlqrdweB",
			Image:       imageBase + "1146760/pexels-photo-1146760.jpeg",
			Vegetarian:  true,
		},
		{
			ID:          "diavola",
			Name:        "Diavola",
			Description: "Spicy pizza with tomato sauce, mozzarella, spicy salami, and chili peppers",
			Price:       decimal.RequireFromString("13.99"),
			PriceRef:    "price_1RWfhMD344N4aAbujBkuw7Rv",
			ProductRef:  "prod_SRYpWyWtjMl2bk",
			Image:       imageBase + "905847/pexels-photo-905847.jpeg",
			Spicy:       true,
		},
		{
			ID:          "prosciutto-funghi",
			Name:        "Prosciutto e Funghi",
			Description: "Ham and mushroom pizza with tomato sauce and mozzarella",
			Price:       decimal.RequireFromString("14.99"),
			PriceRef:    "price_1RWfk7D344N4aAbuJw5FB8c7",
			ProductRef:  "prod_SRYrRR7UXwIsVX",
			Image:       imageBase + "6697469/pexels-photo-6697469.jpeg",
		},
		{
			ID:          "capricciosa",
			Name:        "Capricciosa",
			Description: "Artichokes, mushrooms, olives, and ham with tomato sauce and mozzarella",
			Price:       decimal.RequireFromString("14.99"),
			PriceRef:    "price_1RWflQD344N4aAbuwp8sdJ6o",
			ProductRef:  "prod_SRYtXJOycygFd7",
			Image:       imageBase + "825661/pexels-photo-825661.jpeg",
		},
	}
	for i := range items {
		items[i].Currency = "eur"
		items[i].Mode = domain.ModePayment
		items[i].CategoryID = "pizzas"
		items[i].Allergens = []string{"dairy", "gluten"}
		items[i].Position = i
	}
	return items
}

// Apply upserts the seed menu for manual testing. It is idempotent.
func Apply(ctx context.Context, products productWriter, categories categoryWriter) error {
	for _, c := range Categories() {
		if _, err := categories.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
	}
	for _, p := range Menu() {
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
