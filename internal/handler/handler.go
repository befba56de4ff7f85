package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/movieshelf/internal/config"
	"github.com/user/movieshelf/internal/middleware"
	"github.com/user/movieshelf/internal/model"
	"github.com/user/movieshelf/internal/repository"
	"github.com/user/movieshelf/internal/service"
	"github.com/user/movieshelf/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos    *repository.Repositories
	Config   *config.Config
	Catalog  *service.CatalogClient
	Sessions *service.SessionManager
	Personal *service.PersonalizationStore

	// 热搜榜快照：先返回旧数据，后台刷新
	trendingCache *service.FetchCache[[]*model.TrendingMovie]
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	catalog := service.NewCatalogClient(cfg)
	sessionMgr := service.NewSessionManager(repos.User, cfg.AppSecret, cfg.JWTExpiry)
	personal := service.NewPersonalizationStore(repos.Saved, repos.Trending, cfg.ImageBaseURL)

	h := &Handler{
		Repos:    repos,
		Config:   cfg,
		Catalog:  catalog,
		Sessions: sessionMgr,
		Personal: personal,
	}
	h.trendingCache = service.NewFetchCache(func(ctx context.Context) ([]*model.TrendingMovie, error) {
		return personal.TopTrending(5)
	}, 10*time.Second)
	return h
}

// ==================== 认证 ====================

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册处理
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	user, token, err := h.Sessions.SignUp(req.Email, req.Password, req.Name)
	if err != nil {
		var authErr *model.AuthError
		if errors.As(err, &authErr) {
			utils.BadRequest(c, authErr.Reason)
			return
		}
		utils.InternalServerError(c, "注册失败，请重试")
		return
	}

	h.issueSession(c, user, token)
	utils.Success(c, gin.H{"user": user, "token": token})
}

// Login 登录处理
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindErrorMessage(err))
		return
	}

	user, token, err := h.Sessions.SignIn(req.Email, req.Password)
	if err != nil {
		var authErr *model.AuthError
		if errors.As(err, &authErr) {
			utils.Unauthorized(c, authErr.Reason)
			return
		}
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}

	h.issueSession(c, user, token)
	utils.Success(c, gin.H{"user": user, "token": token})
}

// Logout 登出
// 本地清理永远成功，远端吊销失败不影响结果
func (h *Handler) Logout(c *gin.Context) {
	h.Sessions.SignOut(middleware.ExtractToken(c))

	c.SetCookie("token", "", -1, "/", "", false, true)

	// 清理 Session
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	utils.Success(c, nil)
}

// Me 当前登录用户，未登录返回 null
func (h *Handler) Me(c *gin.Context) {
	utils.Success(c, middleware.GetUser(c))
}

// issueSession 写入 Cookie 和 Session
func (h *Handler) issueSession(c *gin.Context, user *model.SessionUser, token string) {
	c.SetCookie("token", token, int(h.Sessions.Expiry().Seconds()), "/", "", false, true)

	session := sessions.Default(c)
	session.Set("userinfo", *user)
	session.Save()
}

// bindErrorMessage 把参数校验错误转成可读消息
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("参数 %s 不合法", verrs[0].Field())
	}
	return "请求参数错误"
}
