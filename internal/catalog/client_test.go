package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientBooksAcceptsBareArray(t *testing.T) {
	c := context.Background()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/books", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, err := w.Write([]byte(`[{"id": "7", "title": "Dune", "price": 12.5}]`))
			assert.NoError(t, err)
		}),
	)
	defer server.Close()

	books, err := NewClient(server.URL).Books(c)

	assert.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "12.50", books[0].Price.StringFixed(2))
}

func TestClientBooksAcceptsDataEnvelope(t *testing.T) {
	c := context.Background()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, err := w.Write([]byte(`{"data": [{"ID": "7", "Title": "Dune"}]}`))
			assert.NoError(t, err)
		}),
	)
	defer server.Close()

	books, err := NewClient(server.URL).Books(c)

	assert.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestClientBookUnwrapsDataObject(t *testing.T) {
	c := context.Background()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/books/7", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, err := w.Write([]byte(`{"data": {"id": "7", "title": "Dune"}}`))
			assert.NoError(t, err)
		}),
	)
	defer server.Close()

	book, err := NewClient(server.URL).Book(c, "7")

	assert.NoError(t, err)
	assert.Equal(t, "7", book.ID)
	assert.Equal(t, "Dune", book.Title)
}

func TestClientPageRoundTrip(t *testing.T) {
	c := context.Background()
	var savedBody map[string]interface{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/pages/about", r.URL.Path)
			switch r.Method {
			case http.MethodPut:
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&savedBody))
				w.WriteHeader(http.StatusNoContent)
			case http.MethodGet:
				w.Header().Set("Content-Type", "application/json")
				_, err := w.Write([]byte(`{"slug": "about", "title": "About", "body": "Hello"}`))
				assert.NoError(t, err)
			case http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			}
		}),
	)
	defer server.Close()
	client := NewClient(server.URL)

	assert.NoError(t, client.SavePage(c, Page{Slug: "about", Title: "About", Body: "Hello"}))
	assert.Equal(t, "About", savedBody["title"])

	page, err := client.Page(c, "about")
	assert.NoError(t, err)
	assert.Equal(t, Page{Slug: "about", Title: "About", Body: "Hello"}, page)

	assert.NoError(t, client.DeletePage(c, "about"))
}

func TestClientErrorStatus(t *testing.T) {
	c := context.Background()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)
	defer server.Close()

	_, err := NewClient(server.URL).Books(c)
	assert.Error(t, err)

	_, err = NewClient(server.URL).Page(c, "about")
	assert.Error(t, err)
}

func TestClientImageURL(t *testing.T) {
	client := NewClient("http://catalog.local")
	assert.Equal(
		t,
		"http://catalog.local/books/dune-1965/image",
		client.ImageURL("dune-1965"),
	)
}
