package main

import (
	"github.com/shopspring/decimal"
	"github.com/taldoflemis/usersnack/cucina"
)

// seedPizzas is the built-in menu. IDs are stable so selections from a
// previous run keep resolving during local development.
func seedPizzas() []cucina.Pizza {
	return []cucina.Pizza{
		{
			ID:        1,
			Name:      "Margherita",
			BasePrice: decimal.RequireFromString("9.90"),
			Description: "The classic: tomato, mozzarella and fresh basil " +
				"on a thin crust.",
			Ingredients: []cucina.Ingredient{
				{Name: "tomato sauce"}, {Name: "mozzarella"}, {Name: "basil"},
			},
		},
		{
			ID:        2,
			Name:      "Salami",
			BasePrice: decimal.RequireFromString("11.90"),
			Description: "Tomato, mozzarella and a generous layer of " +
				"spicy salami.",
			Ingredients: []cucina.Ingredient{
				{Name: "tomato sauce"}, {Name: "mozzarella"}, {Name: "salami"},
			},
		},
		{
			ID:        3,
			Name:      "Quattro Formaggi",
			BasePrice: decimal.RequireFromString("13.50"),
			Description: "Four cheeses melted together: mozzarella, " +
				"gorgonzola, parmesan and pecorino.",
			Ingredients: []cucina.Ingredient{
				{Name: "mozzarella"}, {Name: "gorgonzola"},
				{Name: "parmesan"}, {Name: "pecorino"},
			},
		},
		{
			ID:        4,
			Name:      "Prosciutto e Funghi",
			BasePrice: decimal.RequireFromString("12.90"),
			Description: "Cooked ham and mushrooms over tomato and " +
				"mozzarella.",
			Ingredients: []cucina.Ingredient{
				{Name: "tomato sauce"}, {Name: "mozzarella"},
				{Name: "ham"}, {Name: "mushrooms"},
			},
		},
		{
			ID:          5,
			Name:        "Diavola",
			BasePrice:   decimal.RequireFromString("12.50"),
			Description: "For the brave: hot salami, chili and olives.",
			Ingredients: []cucina.Ingredient{
				{Name: "tomato sauce"}, {Name: "mozzarella"},
				{Name: "hot salami"}, {Name: "chili"}, {Name: "olives"},
			},
		},
	}
}

func seedExtras() []cucina.Extra {
	return []cucina.Extra{
		{ID: 1, Name: "Extra cheese", Price: decimal.RequireFromString("1.50")},
		{ID: 2, Name: "Mushrooms", Price: decimal.RequireFromString("1.20")},
		{ID: 3, Name: "Bacon", Price: decimal.RequireFromString("2.00")},
		{ID: 4, Name: "Onions", Price: decimal.RequireFromString("0.80")},
		{ID: 5, Name: "Jalapeños", Price: decimal.RequireFromString("1.00")},
		{ID: 6, Name: "Pineapple", Price: decimal.RequireFromString("1.30")},
	}
}
