package middleware

import (
	"net/http"
	"strconv"

	"kkmk/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
	UserHeader     = "X-User-ID"
)

// LoadUser 从 session（或受信任的 X-User-ID 头）解析当前用户并放入上下文。
// 解析不到用户时不拦截，交给 AuthRequired 决定。
func LoadUser(db *gorm.DB, trustHeader bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if _, ok := c.Get(sessions.DefaultKey); ok {
			userID = toUint(sessions.Default(c).Get(SessionUserKey))
		}
		if userID == 0 && trustHeader {
			userID = toUint(c.GetHeader(UserHeader))
		}

		if userID != 0 {
			var user models.User
			if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired 未登录返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// CurrentUser 返回 LoadUser 放入的用户，未登录时为 nil
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// toUint session 里的 user_id 可能以不同类型保存
func toUint(v any) uint {
	switch id := v.(type) {
	case uint:
		return id
	case int:
		if id > 0 {
			return uint(id)
		}
	case int64:
		if id > 0 {
			return uint(id)
		}
	case uint64:
		return uint(id)
	case float64:
		if id > 0 {
			return uint(id)
		}
	case string:
		if n, err := strconv.ParseUint(id, 10, 64); err == nil {
			return uint(n)
		}
	}
	return 0
}
