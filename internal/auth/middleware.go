package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextEmailKey は、ハンドラー間でログイン済みユーザーのメールアドレスを
// 共有するためのキーです。
const ContextEmailKey = "auth.email"

// RequireSession はセッショントークンを検証するミドルウェアを返します。
// クッキー無しは 401、署名不正・期限切れは 403 で遮断します。
func (m *Manager) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "ログインが必要です。",
			})
			return
		}

		email, err := EmailFromToken(raw, []byte(m.cfg.AccessTokenSecret))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "FORBIDDEN",
				"message": "トークンが無効または期限切れです。",
			})
			return
		}

		c.Set(ContextEmailKey, email)
		c.Next()
	}
}
