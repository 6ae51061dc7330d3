package catalog

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// The catalog and admin APIs disagree on key casing (PascalCase vs
// camelCase). Normalization happens once, here, at the client boundary;
// nothing else in the codebase does dual-key lookups.

func NormalizeBook(raw map[string]interface{}) Book {
	id := pickString(raw, "id", "ID", "Id", "BookID", "bookId")
	ref := pickString(raw, "BookID", "bookId", "ref", "Ref")
	if ref == "" {
		ref = id
	}
	return Book{
		ID:       id,
		Ref:      ref,
		Title:    pickString(raw, "title", "Title", "name", "Name"),
		Author:   pickString(raw, "author", "Author"),
		Price:    pickDecimal(raw, "price", "Price", "unitPrice", "UnitPrice"),
		Category: pickString(raw, "category", "Category", "categoryName", "CategoryName"),
		ImageURL: pickString(raw, "imageUrl", "ImageURL", "image", "Image"),
	}
}

func NormalizeCategory(raw map[string]interface{}) Category {
	return Category{
		ID:   pickString(raw, "id", "ID", "Id", "CategoryID", "categoryId"),
		Name: pickString(raw, "name", "Name", "title", "Title"),
	}
}

func NormalizePage(raw map[string]interface{}) Page {
	return Page{
		Slug:  pickString(raw, "slug", "Slug"),
		Title: pickString(raw, "title", "Title"),
		Body:  pickString(raw, "body", "Body", "content", "Content"),
	}
}

func pickString(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// pickDecimal coerces numbers and numeric strings alike; anything else reads
// as zero rather than failing the whole listing.
func pickDecimal(raw map[string]interface{}, keys ...string) decimal.Decimal {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return decimal.NewFromFloat(v)
		case string:
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return decimal.Zero
}
