package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/user/movieshelf/internal/config"
	"github.com/user/movieshelf/internal/model"
	"github.com/user/movieshelf/internal/utils"
	"golang.org/x/sync/singleflight"
)

// CatalogClient 电影目录服务客户端（TMDB）
// 所有操作只读，目录服务拥有数据，客户端不做本地修改
type CatalogClient struct {
	http         *utils.HTTPClient
	baseURL      string
	imageBaseURL string
	group        singleflight.Group
	listCache    *utils.ResultCache[[]model.Movie]
}

// NewCatalogClient 创建目录客户端
func NewCatalogClient(cfg *config.Config) *CatalogClient {
	return &CatalogClient{
		http:         utils.NewHTTPClient(30*time.Second, cfg.TMDBToken),
		baseURL:      cfg.TMDBBaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		listCache:    utils.NewResultCache[[]model.Movie](1000, 10*time.Minute),
	}
}

// SearchOrDiscover 搜索电影
// 关键词非空走文本搜索，为空走热门度排序的发现接口
func (c *CatalogClient) SearchOrDiscover(ctx context.Context, query string) ([]model.Movie, error) {
	var endpoint string
	if query != "" {
		endpoint = fmt.Sprintf("%s/search/movie?query=%s", c.baseURL, url.QueryEscape(query))
	} else {
		endpoint = c.baseURL + "/discover/movie?sort_by=popularity.desc"
	}

	cacheKey := "movies:" + query
	if cached, ok := c.listCache.Get(cacheKey); ok {
		return cached, nil
	}

	// 使用 singleflight 避免并发重复请求同一个词
	val, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		var result model.MovieListResponse
		if err := c.http.GetJSON(ctx, endpoint, &result); err != nil {
			return nil, err
		}
		return result.Results, nil
	})
	if err != nil {
		return nil, err
	}

	movies := val.([]model.Movie)
	c.listCache.Set(cacheKey, movies)
	return movies, nil
}

// FetchDetails 获取单部电影详情
func (c *CatalogClient) FetchDetails(ctx context.Context, movieID int) (*model.MovieDetails, error) {
	var details model.MovieDetails
	endpoint := fmt.Sprintf("%s/movie/%d", c.baseURL, movieID)
	if err := c.http.GetJSON(ctx, endpoint, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ResolveTrailerKey 解析电影预告片
// 按固定优先级取第一个匹配项：官方 YouTube 预告片 > 任意 YouTube 预告片，
// 同级按接口返回顺序取先出现的，没有则返回空串
func (c *CatalogClient) ResolveTrailerKey(ctx context.Context, movieID int) (string, error) {
	var videos model.VideoListResponse
	endpoint := fmt.Sprintf("%s/movie/%d/videos", c.baseURL, movieID)
	if err := c.http.GetJSON(ctx, endpoint, &videos); err != nil {
		return "", err
	}

	for _, v := range videos.Results {
		if v.Type == "Trailer" && v.Site == "YouTube" && v.Official {
			return v.Key, nil
		}
	}
	for _, v := range videos.Results {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v.Key, nil
		}
	}
	return "", nil
}

// PosterURL 由 poster_path 拼接完整海报地址，空路径返回空串
func (c *CatalogClient) PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.imageBaseURL + posterPath
}
