package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shopsphere-web/internal/models"
)

func bytesReader(s string) io.Reader { return strings.NewReader(s) }

func TestListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Product{{ID: "1", Title: "Desk Lamp"}})
	}))
	defer srv.Close()

	products, err := NewClient(srv.URL).ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Desk Lamp", products[0].Title)
}

func TestSimpleSearchSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple-search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"query":"desk lamp"}`, string(body))
		json.NewEncoder(w).Encode(models.SearchResponse{Products: []models.Product{{ID: "1"}}})
	}))
	defer srv.Close()

	products, err := NewClient(srv.URL).SimpleSearch(context.Background(), "desk lamp")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestRecommendMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Recommend(context.Background(), "unicorn")
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestReverseImageSearchUploadsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse-search/image", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "5", r.FormValue("top_k"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.png", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("image-bytes"), data)

		json.NewEncoder(w).Encode(models.SearchResponse{Products: []models.Product{
			{ID: "a", SimilarityScore: 0.91},
			{ID: "b", SimilarityScore: 0.77},
		}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	products, err := client.ReverseImageSearch(context.Background(), "photo.png",
		bytesReader("image-bytes"), 5)
	require.NoError(t, err)
	require.Len(t, products, 2)
	// Received order is preserved, ranking is the backend's.
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "b", products[1].ID)
}

func TestReverseImageSearchErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusServiceUnavailable, ErrNotReady},
		{http.StatusNotFound, ErrNoMatches},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		_, err := NewClient(srv.URL).ReverseImageSearch(context.Background(), "p.png", bytesReader("x"), 3)
		assert.ErrorIs(t, err, tt.want)
		srv.Close()
	}
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		json.NewEncoder(w).Encode(models.BackendStatus{ImageSearchReady: true})
	}))
	defer srv.Close()

	st, err := NewClient(srv.URL).Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.ImageSearchReady)
}
