package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/movieshelf/internal/model"
	"github.com/user/movieshelf/internal/utils"
)

// Claims JWT 声明
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// SessionResolver 根据 token 解析当前登录用户，解析失败返回 nil
type SessionResolver interface {
	CurrentUser(tokenString string) *model.SessionUser
}

// RequireAuth 必须登录中间件
func RequireAuth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := sessions.CurrentUser(ExtractToken(c))
		if user == nil {
			utils.Unauthorized(c, "")
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set("user", user)
		c.Next()
	}
}

// OptionalAuth 可选登录中间件（不强制要求登录）
func OptionalAuth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := sessions.CurrentUser(ExtractToken(c)); user != nil {
			c.Set("user", user)
		}
		c.Next()
	}
}

// ExtractToken 从 Cookie 或 Authorization Header 中提取 token
func ExtractToken(c *gin.Context) string {
	// 优先从 Cookie 获取
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUser 从上下文获取当前用户（未登录返回 nil）
func GetUser(c *gin.Context) *model.SessionUser {
	if v, exists := c.Get("user"); exists {
		if user, ok := v.(*model.SessionUser); ok {
			return user
		}
	}
	return nil
}

// GetUserID 从上下文获取用户 ID（未登录返回 0）
func GetUserID(c *gin.Context) int {
	if user := GetUser(c); user != nil {
		return user.ID
	}
	return 0
}

// GenerateToken 生成 JWT Token
func GenerateToken(user *model.SessionUser, jwtSecret string, expiry time.Duration) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ParseToken 解析并校验 JWT Token
func ParseToken(tokenString, jwtSecret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
