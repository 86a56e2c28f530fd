package catalog

import (
	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

func SeedCategories() []domain.Category {
	return []domain.Category{
		{ID: "powder", Name: "Matcha Powder"},
		{ID: "drinks", Name: "Matcha Drinks"},
		{ID: "accessories", Name: "Accessories"},
		{ID: "gifts", Name: "Gift Sets"},
	}
}

func SeedProducts() []domain.Product {
	return []domain.Product{
		product("ceremonial-grade", "Ceremonial Grade Matcha", "28.99", "powder", "ceremonial-matcha.jpg", true,
			"Premium ceremonial grade matcha powder from Uji, Japan.",
			"Stone-ground Uji matcha with a smooth umami flavor and no bitterness. Made for drinking straight."),
		product("culinary-grade", "Culinary Grade Matcha", "19.99", "powder", "culinary-matcha.jpg", false,
			"Versatile culinary grade matcha for cooking and baking.",
			"A bolder matcha that holds its color and flavor in baking, smoothies and lattes."),
		product("matcha-latte-mix", "Matcha Latte Mix", "15.99", "drinks", "latte-mix.jpg", true,
			"Ready-to-mix matcha latte blend with natural sweeteners.",
			"Matcha blended with coconut milk powder and monk fruit. Add hot water and stir."),
		product("matcha-whisk", "Bamboo Matcha Whisk (Chasen)", "12.99", "accessories", "bamboo-whisk.jpg", false,
			"Traditional bamboo whisk for preparing matcha.",
			"Handcrafted 100-prong chasen for a fine froth without clumps."),
		product("matcha-bowl", "Ceramic Matcha Bowl (Chawan)", "24.99", "accessories", "matcha-bowl.jpg", true,
			"Artisan ceramic bowl for traditional matcha preparation.",
			"A wide, textured chawan made by hand for whisking and drinking matcha."),
		product("starter-kit", "Matcha Starter Kit", "59.99", "gifts", "starter-kit.jpg", true,
			"Everything you need to begin your matcha journey.",
			"Ceremonial matcha, chasen, chashaku and chawan in one box."),
		product("matcha-tin", "Matcha Storage Tin", "9.99", "accessories", "matcha-tin.jpg", false,
			"Airtight tin for keeping matcha fresh.",
			"Double-lid tin that keeps light, moisture and odors away from opened matcha."),
		product("iced-matcha", "Ready-to-Drink Iced Matcha", "4.99", "drinks", "iced-matcha.jpg", false,
			"Refreshing iced matcha in a convenient bottle.",
			"Bottled matcha lightly sweetened with organic cane sugar."),
		product("luxury-gift-set", "Luxury Matcha Gift Set", "89.99", "gifts", "luxury-gift.jpg", true,
			"Premium gift set with our finest matcha and accessories.",
			"Top-grade ceremonial matcha with bowl, whisk, scoop and whisk holder in a wooden gift box."),
		product("matcha-scoop", "Bamboo Matcha Scoop (Chashaku)", "7.99", "accessories", "bamboo-scoop.jpg", false,
			"Traditional bamboo scoop for measuring matcha.",
			"Carved from one piece of bamboo and sized for a single serving."),
	}
}

func product(id, name, price, category, image string, featured bool, short, description string) domain.Product {
	return domain.Product{
		ID:               id,
		Name:             name,
		ShortDescription: short,
		Description:      description,
		Price:            decimal.RequireFromString(price),
		Image:            "images/products/" + image,
		Category:         category,
		Featured:         featured,
	}
}
