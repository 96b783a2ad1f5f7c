package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopsphere-web/internal/models"
)

// Sentinel errors for the backend failure taxonomy. Handlers map these
// onto distinct user-visible messages.
var (
	// ErrNotReady means the image-search service is still warming up.
	ErrNotReady = errors.New("image search backend not ready")
	// ErrNoMatches means the backend found nothing for the uploaded image.
	ErrNoMatches = errors.New("no matching products")
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// Client talks to the shop backend API. The base address is injected so
// the same storefront can point at any deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListProducts fetches the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list products: backend returned %d", resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("list products: decode: %w", err)
	}
	return products, nil
}

// SimpleSearch runs a keyword search against the backend.
func (c *Client) SimpleSearch(ctx context.Context, query string) ([]models.Product, error) {
	body, _ := json.Marshal(map[string]string{"query": query})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/simple-search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("simple search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("simple search: backend returned %d", resp.StatusCode)
	}

	var sr models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("simple search: decode: %w", err)
	}
	return sr.Products, nil
}

// Recommend asks the backend for its single AI-selected product.
func (c *Client) Recommend(ctx context.Context, query string) (*models.Recommendation, error) {
	body, _ := json.Marshal(map[string]string{"query": query})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoMatches
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommend: backend returned %d", resp.StatusCode)
	}

	var rec models.Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("recommend: decode: %w", err)
	}
	return &rec, nil
}

// ReverseImageSearch uploads an image and returns ranked similar
// products, capped at topK. 503 and 404 are mapped onto the taxonomy
// sentinels so callers can show distinct messages.
func (c *Client) ReverseImageSearch(ctx context.Context, filename string, image io.Reader, topK int) ([]models.Product, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("reverse image search: read upload: %w", err)
	}
	if err := mw.WriteField("top_k", strconv.Itoa(topK)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reverse-search/image", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse image search: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return nil, ErrNotReady
	case http.StatusNotFound:
		return nil, ErrNoMatches
	default:
		return nil, fmt.Errorf("reverse image search: backend returned %d", resp.StatusCode)
	}

	var sr models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("reverse image search: decode: %w", err)
	}
	return sr.Products, nil
}

// Status reports whether the backend search services are warmed up.
func (c *Client) Status(ctx context.Context) (*models.BackendStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status: backend returned %d", resp.StatusCode)
	}

	var st models.BackendStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("status: decode: %w", err)
	}
	return &st, nil
}
