package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/otel"
)

// Client wraps the upstream catalog and content APIs. Responses arrive either
// as a bare JSON array or wrapped in a {data: ...} envelope; both are
// accepted.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (cl *Client) Books(c context.Context) ([]Book, error) {
	raws, err := cl.getList(c, "/books")
	if err != nil {
		return nil, err
	}
	books := make([]Book, len(raws))
	for i, raw := range raws {
		books[i] = NormalizeBook(raw)
	}
	return books, nil
}

func (cl *Client) Book(c context.Context, id string) (Book, error) {
	raw, err := cl.getObject(c, "/books/"+id)
	if err != nil {
		return Book{}, err
	}
	return NormalizeBook(raw), nil
}

func (cl *Client) Categories(c context.Context) ([]Category, error) {
	raws, err := cl.getList(c, "/categories")
	if err != nil {
		return nil, err
	}
	categories := make([]Category, len(raws))
	for i, raw := range raws {
		categories[i] = NormalizeCategory(raw)
	}
	return categories, nil
}

func (cl *Client) Page(c context.Context, slug string) (Page, error) {
	raw, err := cl.getObject(c, "/pages/"+slug)
	if err != nil {
		return Page{}, err
	}
	return NormalizePage(raw), nil
}

func (cl *Client) SavePage(c context.Context, page Page) error {
	body, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed marshaling page with error=%w", err)
	}
	return cl.send(c, http.MethodPut, "/pages/"+page.Slug, body)
}

func (cl *Client) DeletePage(c context.Context, slug string) error {
	return cl.send(c, http.MethodDelete, "/pages/"+slug, nil)
}

// ImageURL resolves the image resource for a product reference. Image bytes
// are served by the upstream directly; the storefront only hands out the URL.
func (cl *Client) ImageURL(ref string) string {
	return fmt.Sprintf("%s/books/%s/image", cl.baseURL, ref)
}

func (cl *Client) getList(c context.Context, path string) ([]map[string]interface{}, error) {
	body, err := cl.get(c, path)
	if err != nil {
		return nil, err
	}
	raws := []map[string]interface{}{}
	if err := json.Unmarshal(body, &raws); err == nil {
		return raws, nil
	}
	envelope := struct {
		Data []map[string]interface{} `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed unmarshaling list response with error=%w", err)
	}
	return envelope.Data, nil
}

func (cl *Client) getObject(c context.Context, path string) (map[string]interface{}, error) {
	body, err := cl.get(c, path)
	if err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed unmarshaling object response with error=%w", err)
	}
	if data, ok := raw["data"].(map[string]interface{}); ok {
		return data, nil
	}
	return raw, nil
}

func (cl *Client) get(c context.Context, path string) ([]byte, error) {
	c, span := otel.Tracer.Start(c, "CatalogClient get")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogClient get").
		Str(log.KEY_REQUEST_URL, cl.baseURL+path).
		Logger()

	req, err := http.NewRequestWithContext(c, http.MethodGet, cl.baseURL+path, nil)
	if err != nil {
		err = fmt.Errorf("failed creating catalog request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling catalog with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("catalog returned status code=%d", resp.StatusCode)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	buf := bytes.Buffer{}
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		err = fmt.Errorf("failed reading catalog response with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return buf.Bytes(), nil
}

func (cl *Client) send(c context.Context, method string, path string, body []byte) error {
	c, span := otel.Tracer.Start(c, "CatalogClient send")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CatalogClient send").
		Str(log.KEY_REQUEST_METHOD, method).
		Str(log.KEY_REQUEST_URL, cl.baseURL+path).
		Logger()

	req, err := http.NewRequestWithContext(c, method, cl.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		err = fmt.Errorf("failed creating content request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if body != nil {
		req.Header.Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	}
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling content api with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusNoContent {
		err = fmt.Errorf("content api returned status code=%d", resp.StatusCode)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}
