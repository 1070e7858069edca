package ingest

import "github.com/shoplens/shopsearch/internal/domain/product"

// seedProducts returns the built-in demo catalog used by the seed command.
// The set deliberately spans categories, price bands, and rating levels so
// every sort mode and filter has something to show out of the box.
func seedProducts() []product.Product {
	rows := []struct {
		id, title, description, tags, category, brand string
		price, wasPrice, discount, rating             float64
		popularity                                    int64
	}{
		{"wh-1000", "Noise Cancelling Headphones", "Over-ear wireless headphones with adaptive noise cancelling and 30 hour battery life", "audio,wireless,travel", "Electronics", "Sonance", 279.99, 349.99, 20, 4.7, 920},
		{"wh-200", "Wired Studio Headphones", "Closed-back studio monitoring headphones with a flat frequency response", "audio,studio", "Electronics", "Sonance", 89.99, 0, 0, 4.4, 410},
		{"spk-77", "Portable Bluetooth Speaker", "Water resistant speaker with 12 hour playtime and deep bass", "audio,outdoor,bluetooth", "Electronics", "Wavecrest", 59.99, 79.99, 25, 4.2, 680},
		{"lp-450", "Ultralight Laptop 14", "14 inch ultrabook with 16GB RAM and all-day battery", "computer,portable,work", "Electronics", "Vertex", 1099.00, 1299.00, 15, 4.6, 750},
		{"run-5", "Trail Running Shoes", "Lightweight trail shoes with aggressive grip and rock plate", "running,outdoor,trail", "Sports", "Stryda", 129.95, 0, 0, 4.5, 560},
		{"run-6", "Road Running Shoes", "Cushioned daily trainer for road running", "running,road", "Sports", "Stryda", 109.95, 139.95, 21, 4.3, 830},
		{"yoga-1", "Non-Slip Yoga Mat", "6mm thick yoga mat with alignment lines and carry strap", "yoga,fitness,home", "Sports", "Calmio", 34.99, 0, 0, 4.1, 300},
		{"cof-9", "Burr Coffee Grinder", "Conical burr grinder with 40 grind settings", "coffee,kitchen", "Home", "Aromati", 149.00, 179.00, 17, 4.8, 640},
		{"cof-3", "Pour Over Coffee Kit", "Glass dripper with paper filters and serving carafe", "coffee,kitchen,manual", "Home", "Aromati", 42.50, 0, 0, 4.0, 220},
		{"lamp-2", "Adjustable Desk Lamp", "LED desk lamp with color temperature control and USB charging port", "lighting,desk,office", "Home", "Lumora", 45.00, 60.00, 25, 3.9, 180},
		{"bk-101", "The Silent Orchard", "A slow-burning mystery novel set in a remote apple farming village", "fiction,mystery,novel", "Books", "Foxglove Press", 16.99, 0, 0, 4.6, 480},
		{"bk-205", "Cooking With Embers", "A cookbook about live-fire techniques for the home kitchen", "cooking,grill,nonfiction", "Books", "Foxglove Press", 29.99, 39.99, 25, 4.4, 350},
	}

	out := make([]product.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, product.Reconstruct(
			r.id, r.title, r.description, r.tags, r.category, r.brand,
			r.price, r.wasPrice, r.discount, r.rating, r.popularity,
			"", "",
		))
	}
	return out
}
