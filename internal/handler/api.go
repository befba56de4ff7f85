package handler

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/movieshelf/internal/middleware"
	"github.com/user/movieshelf/internal/model"
	"github.com/user/movieshelf/internal/utils"
)

// Movies 电影列表
// q 非空走搜索并记录热搜命中，为空走热门发现
func (h *Handler) Movies(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	movies, err := h.Catalog.SearchOrDiscover(c.Request.Context(), query)
	if err != nil {
		log.Printf("[Handler] 获取电影列表失败 (q: %q): %v", query, err)
		utils.BadGateway(c, "获取电影列表失败")
		return
	}

	// 有搜索结果时按搜索词累计热度，取第一个结果做展示素材
	if query != "" && len(movies) > 0 {
		first := movies[0]
		go func() {
			if err := h.Personal.RecordSearch(query, &first); err != nil {
				log.Printf("[Handler] 记录热搜失败 (q: %q): %v", query, err)
			}
		}()
	}

	utils.Success(c, movies)
}

// MovieDetail 电影详情
func (h *Handler) MovieDetail(c *gin.Context) {
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的电影 ID")
		return
	}

	details, err := h.Catalog.FetchDetails(c.Request.Context(), movieID)
	if err != nil {
		var netErr *model.NetworkError
		if errors.As(err, &netErr) && netErr.Status == 404 {
			utils.NotFound(c, "电影不存在")
			return
		}
		log.Printf("[Handler] 获取电影详情失败 (ID: %d): %v", movieID, err)
		utils.BadGateway(c, "获取电影详情失败")
		return
	}

	utils.Success(c, details)
}

// MovieTrailer 电影预告片，没有可用预告片时 key 为 null
func (h *Handler) MovieTrailer(c *gin.Context) {
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的电影 ID")
		return
	}

	key, err := h.Catalog.ResolveTrailerKey(c.Request.Context(), movieID)
	if err != nil {
		log.Printf("[Handler] 获取预告片失败 (ID: %d): %v", movieID, err)
		utils.BadGateway(c, "获取预告片失败")
		return
	}

	if key == "" {
		utils.Success(c, gin.H{"key": nil})
		return
	}
	utils.Success(c, gin.H{"key": key})
}

// Trending 热搜榜
// 每次访问都触发后台刷新，有旧数据先返回旧数据，没有则等当前加载完成
func (h *Handler) Trending(c *gin.Context) {
	records, loading, err := h.trendingCache.Snapshot()
	if !loading {
		h.trendingCache.Refetch()
	}
	if records == nil {
		records, err = h.trendingCache.Wait(c.Request.Context())
	}

	if records == nil && err != nil {
		log.Printf("[Handler] 获取热搜榜失败: %v", err)
		utils.InternalServerError(c, "获取热搜榜失败")
		return
	}

	utils.Success(c, records)
}

// ==================== 收藏（需要登录） ====================

type saveMovieRequest struct {
	MovieID   int    `json:"movie_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	PosterURL string `json:"poster_url"`
}

// SavedList 收藏列表，远端故障时降级为空列表
func (h *Handler) SavedList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	utils.Success(c, h.Personal.ListSavedMovies(userID))
}

// SavedIDs 已收藏的电影 ID 列表
func (h *Handler) SavedIDs(c *gin.Context) {
	userID := middleware.GetUserID(c)
	utils.Success(c, h.Personal.ListSavedMovieIDs(userID))
}

// SaveMovie 收藏电影（幂等，重复收藏返回既有记录）
func (h *Handler) SaveMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req saveMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	record, err := h.Personal.SaveMovie(userID, req.MovieID, req.Title, req.PosterURL)
	if err != nil {
		log.Printf("[Handler] 收藏失败 (UserID: %d, MovieID: %d): %v", userID, req.MovieID, err)
		utils.InternalServerError(c, "收藏失败，请重试")
		return
	}

	utils.Success(c, record)
}

// RemoveSaved 删除收藏
func (h *Handler) RemoveSaved(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recordID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的记录 ID")
		return
	}

	if err := h.Personal.RemoveSavedMovie(userID, recordID); err != nil {
		log.Printf("[Handler] 删除收藏失败 (RecordID: %d): %v", recordID, err)
		utils.InternalServerError(c, "删除失败")
		return
	}

	utils.Success(c, nil)
}
