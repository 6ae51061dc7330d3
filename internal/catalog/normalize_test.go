package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rawFromJSON(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	m := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("failed unmarshaling raw payload with error: %s", err)
	}
	return m
}

func TestNormalizeBook(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Book
	}{
		{
			name: "given camelCase payload should normalize",
			raw:  `{"id": 7, "bookId": "dune-1965", "title": "Dune", "author": "Frank Herbert", "price": 12.5, "category": "Science Fiction", "imageUrl": "/img/dune.jpg"}`,
			expected: Book{
				ID:       "7",
				Ref:      "dune-1965",
				Title:    "Dune",
				Author:   "Frank Herbert",
				Category: "Science Fiction",
				ImageURL: "/img/dune.jpg",
			},
		},
		{
			name: "given PascalCase payload should normalize",
			raw:  `{"ID": "7", "BookID": "dune-1965", "Title": "Dune", "Author": "Frank Herbert", "Price": "12.50", "Category": "Science Fiction"}`,
			expected: Book{
				ID:       "7",
				Ref:      "dune-1965",
				Title:    "Dune",
				Author:   "Frank Herbert",
				Category: "Science Fiction",
			},
		},
		{
			name:     "given missing ref should fall back to id",
			raw:      `{"id": "7", "name": "Dune"}`,
			expected: Book{ID: "7", Ref: "7", Title: "Dune"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := NormalizeBook(rawFromJSON(t, test.raw))
			assert.Equal(t, test.expected.ID, actual.ID)
			assert.Equal(t, test.expected.Ref, actual.Ref)
			assert.Equal(t, test.expected.Title, actual.Title)
			assert.Equal(t, test.expected.Author, actual.Author)
			assert.Equal(t, test.expected.Category, actual.Category)
			assert.Equal(t, test.expected.ImageURL, actual.ImageURL)
		})
	}
}

func TestNormalizeBookPriceCoercion(t *testing.T) {
	fromNumber := NormalizeBook(rawFromJSON(t, `{"id": "7", "price": 12.5}`))
	assert.Equal(t, "12.50", fromNumber.Price.StringFixed(2))

	fromString := NormalizeBook(rawFromJSON(t, `{"id": "7", "Price": "12.50"}`))
	assert.Equal(t, "12.50", fromString.Price.StringFixed(2))

	fromGarbage := NormalizeBook(rawFromJSON(t, `{"id": "7", "price": "free"}`))
	assert.True(t, fromGarbage.Price.IsZero())

	missing := NormalizeBook(rawFromJSON(t, `{"id": "7"}`))
	assert.True(t, missing.Price.IsZero())
}

func TestNormalizeCategory(t *testing.T) {
	camel := NormalizeCategory(rawFromJSON(t, `{"id": 3, "name": "Science Fiction"}`))
	assert.Equal(t, Category{ID: "3", Name: "Science Fiction"}, camel)

	pascal := NormalizeCategory(rawFromJSON(t, `{"CategoryID": "3", "Title": "Science Fiction"}`))
	assert.Equal(t, Category{ID: "3", Name: "Science Fiction"}, pascal)
}

func TestNormalizePage(t *testing.T) {
	camel := NormalizePage(rawFromJSON(t, `{"slug": "about", "title": "About", "content": "Hello"}`))
	assert.Equal(t, Page{Slug: "about", Title: "About", Body: "Hello"}, camel)

	pascal := NormalizePage(rawFromJSON(t, `{"Slug": "about", "Title": "About", "Body": "Hello"}`))
	assert.Equal(t, Page{Slug: "about", Title: "About", Body: "Hello"}, pascal)
}
