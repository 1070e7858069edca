package product

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Rating and popularity bounds for catalog products.
const (
	MaxRating     = 5.0
	MaxPopularity = 1000
	MaxTitleLen   = 255
)

// Product is the catalog aggregate (immutable value object).
// The embedding lives in a separate store keyed by the product ID; text fields
// and embedding are only ever rewritten together during ingestion.
type Product struct {
	id          string
	title       string
	description string
	tags        string
	category    string
	brand       string
	price       float64
	wasPrice    float64
	discount    float64
	rating      float64
	popularity  int64
	imageURL    string
	productURL  string
}

// New validates and creates a Product.
// ID: ^[a-zA-Z0-9_-]+$, 1-64 chars. Title is required, price non-negative,
// rating within [0, 5], popularity within [0, 1000].
func New(
	id, title, description, tags, category, brand string,
	price, wasPrice, discount, rating float64,
	popularity int64,
	imageURL, productURL string,
) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("product ID is required")
	}
	if len(id) > 64 {
		return Product{}, fmt.Errorf("product ID too long (max 64)")
	}
	if !idRegex.MatchString(id) {
		return Product{}, fmt.Errorf("product ID must be alphanumeric with underscores and hyphens")
	}
	if title == "" {
		return Product{}, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLen {
		return Product{}, fmt.Errorf("title too long (max %d)", MaxTitleLen)
	}
	if price < 0 {
		return Product{}, fmt.Errorf("price must be non-negative")
	}
	if rating < 0 || rating > MaxRating {
		return Product{}, fmt.Errorf("rating must be between 0 and %g", MaxRating)
	}
	if popularity < 0 || popularity > MaxPopularity {
		return Product{}, fmt.Errorf("popularity must be between 0 and %d", MaxPopularity)
	}

	return Product{
		id:          id,
		title:       title,
		description: description,
		tags:        tags,
		category:    category,
		brand:       brand,
		price:       price,
		wasPrice:    wasPrice,
		discount:    discount,
		rating:      rating,
		popularity:  popularity,
		imageURL:    imageURL,
		productURL:  productURL,
	}, nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(
	id, title, description, tags, category, brand string,
	price, wasPrice, discount, rating float64,
	popularity int64,
	imageURL, productURL string,
) Product {
	return Product{
		id: id, title: title, description: description, tags: tags,
		category: category, brand: brand,
		price: price, wasPrice: wasPrice, discount: discount,
		rating: rating, popularity: popularity,
		imageURL: imageURL, productURL: productURL,
	}
}

// ID returns the product identifier.
func (p *Product) ID() string { return p.id }

// Title returns the product title.
func (p *Product) Title() string { return p.title }

// Description returns the product description.
func (p *Product) Description() string { return p.description }

// Tags returns the comma-separated tag string.
func (p *Product) Tags() string { return p.tags }

// Category returns the product category.
func (p *Product) Category() string { return p.category }

// Brand returns the product brand.
func (p *Product) Brand() string { return p.brand }

// Price returns the current price.
func (p *Product) Price() float64 { return p.price }

// WasPrice returns the pre-discount price.
func (p *Product) WasPrice() float64 { return p.wasPrice }

// Discount returns the discount percentage.
func (p *Product) Discount() float64 { return p.discount }

// Rating returns the average rating (0-5).
func (p *Product) Rating() float64 { return p.rating }

// Popularity returns the popularity score (0-1000).
func (p *Product) Popularity() int64 { return p.popularity }

// ImageURL returns the product image URL.
func (p *Product) ImageURL() string { return p.imageURL }

// ProductURL returns the storefront URL.
func (p *Product) ProductURL() string { return p.productURL }

// Indexed pairs a product with its embedding vector for ingestion paths.
// A nil vector means the product is stored without a semantic representation.
type Indexed struct {
	Product Product
	Vector  []float32
}

// EmbeddingText joins the text fields that feed the embedding model.
// The same composition is used at ingestion and re-embedding time so stored
// vectors stay comparable.
func (p *Product) EmbeddingText() string {
	parts := []string{p.title, p.description, p.category, p.brand, p.tags}
	nonEmpty := parts[:0]
	for _, s := range parts {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, " ")
}
