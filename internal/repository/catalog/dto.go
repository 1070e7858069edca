package catalog

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/shoplens/shopsearch/internal/domain/product"
)

// buildHashFields converts a product into a flat map[string]string for HSET.
func buildHashFields(p *product.Product) map[string]string {
	return map[string]string{
		"title":       p.Title(),
		"description": p.Description(),
		"tags":        p.Tags(),
		"category":    p.Category(),
		"brand":       p.Brand(),
		"price":       formatFloat(p.Price()),
		"was_price":   formatFloat(p.WasPrice()),
		"discount":    formatFloat(p.Discount()),
		"rating":      formatFloat(p.Rating()),
		"popularity":  strconv.FormatInt(p.Popularity(), 10),
		"image_url":   p.ImageURL(),
		"product_url": p.ProductURL(),
	}
}

// parseHashFields converts a flat hash map back into a product.
// Unparseable numerics fall back to zero; stored data is validated at write
// time, not read time.
func parseHashFields(id string, m map[string]string) product.Product {
	price, _ := strconv.ParseFloat(m["price"], 64)
	wasPrice, _ := strconv.ParseFloat(m["was_price"], 64)
	discount, _ := strconv.ParseFloat(m["discount"], 64)
	rating, _ := strconv.ParseFloat(m["rating"], 64)
	popularity, _ := strconv.ParseInt(m["popularity"], 10, 64)

	return product.Reconstruct(
		id, m["title"], m["description"], m["tags"], m["category"], m["brand"],
		price, wasPrice, discount, rating, popularity,
		m["image_url"], m["product_url"],
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// vectorToBytes serializes []float32 to bytes (4 bytes per float, little-endian).
func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToVector deserializes bytes back to []float32.
func bytesToVector(b []byte) []float32 {
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
