package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/movieshelf/internal/config"
	"github.com/user/movieshelf/internal/model"
)

// newTestCatalog 构造指向假目录服务的客户端
func newTestCatalog(handler http.Handler) (*CatalogClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	cfg := &config.Config{
		TMDBToken:    "test-token",
		TMDBBaseURL:  srv.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p/w500",
	}
	return NewCatalogClient(cfg), srv
}

func TestSearchOrDiscoverSelection(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	client, srv := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.MovieListResponse{
			Results: []model.Movie{{ID: 1, Title: "Dune"}},
		})
	}))
	defer srv.Close()

	// 空关键词走发现接口
	movies, err := client.SearchOrDiscover(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "/discover/movie", gotPath)
	assert.Equal(t, "sort_by=popularity.desc", gotQuery)
	assert.Equal(t, "Bearer test-token", gotAuth)

	// 非空关键词走搜索接口，关键词要做 URL 编码
	_, err = client.SearchOrDiscover(context.Background(), "batman begins")
	require.NoError(t, err)
	assert.Equal(t, "/search/movie", gotPath)
	assert.Equal(t, "query=batman+begins", gotQuery)
}

func TestSearchOrDiscoverNetworkError(t *testing.T) {
	client, srv := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := client.SearchOrDiscover(context.Background(), "dune")
	require.Error(t, err)

	var netErr *model.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusServiceUnavailable, netErr.Status)
	assert.Equal(t, "Service Unavailable", netErr.StatusText)
}

func TestSearchOrDiscoverCachesResults(t *testing.T) {
	calls := 0
	client, srv := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(model.MovieListResponse{
			Results: []model.Movie{{ID: 42, Title: "Interstellar"}},
		})
	}))
	defer srv.Close()

	for i := 0; i < 3; i++ {
		movies, err := client.SearchOrDiscover(context.Background(), "interstellar")
		require.NoError(t, err)
		require.Len(t, movies, 1)
	}
	assert.Equal(t, 1, calls, "同一关键词应命中缓存，只请求一次")
}

func TestFetchDetails(t *testing.T) {
	client, srv := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/27205", r.URL.Path)
		json.NewEncoder(w).Encode(model.MovieDetails{
			ID:      27205,
			Title:   "Inception",
			Runtime: 148,
			Budget:  160000000,
			Genres:  []model.Genre{{ID: 28, Name: "Action"}},
		})
	}))
	defer srv.Close()

	details, err := client.FetchDetails(context.Background(), 27205)
	require.NoError(t, err)
	assert.Equal(t, "Inception", details.Title)
	assert.Equal(t, 148, details.Runtime)
	require.Len(t, details.Genres, 1)
}

func TestResolveTrailerKeyPriority(t *testing.T) {
	videos := []model.VideoRef{
		{Key: "teaser", Type: "Teaser", Site: "YouTube", Official: true},
		{Key: "fan-cut", Type: "Trailer", Site: "YouTube", Official: false},
		{Key: "X", Type: "Trailer", Site: "YouTube", Official: true},
	}
	client, srv := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.VideoListResponse{Results: videos})
	}))
	defer srv.Close()

	// 官方 YouTube 预告片优先
	key, err := client.ResolveTrailerKey(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "X", key)

	// 没有官方预告片时退到第一个非官方 YouTube 预告片
	videos = []model.VideoRef{
		{Key: "teaser", Type: "Teaser", Site: "YouTube"},
		{Key: "first-fan", Type: "Trailer", Site: "YouTube", Official: false},
		{Key: "second-fan", Type: "Trailer", Site: "YouTube", Official: false},
	}
	key, err = client.ResolveTrailerKey(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "first-fan", key)

	// 非 YouTube 平台的预告片不选
	videos = []model.VideoRef{
		{Key: "vimeo", Type: "Trailer", Site: "Vimeo", Official: true},
		{Key: "clip", Type: "Clip", Site: "YouTube", Official: true},
	}
	key, err = client.ResolveTrailerKey(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestResolveTrailerKeyEmptyList(t *testing.T) {
	client, srv := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.VideoListResponse{})
	}))
	defer srv.Close()

	key, err := client.ResolveTrailerKey(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestCatalogTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(model.MovieListResponse{})
	}))
	defer srv.Close()

	cfg := &config.Config{TMDBToken: "t", TMDBBaseURL: srv.URL}
	client := NewCatalogClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.SearchOrDiscover(ctx, "slow")
	require.Error(t, err)
}
