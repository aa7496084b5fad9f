// Package auth はユーザー登録・ログインとセッショントークンの検証を提供します。
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/salehin0531/book-server/internal/config"
	"github.com/salehin0531/book-server/internal/store"
)

// SessionCookieName はセッショントークンを運ぶクッキーの名前です。
const SessionCookieName = "token"

// bcryptCost はパスワードハッシュのワークファクターです。
const bcryptCost = 10

// UserStore は認証処理が必要とするユーザー永続化の契約です。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*store.User, error)
	Create(ctx context.Context, user *store.User) (string, error)
	UpdatePasswordHash(ctx context.Context, email, newHash string) (int64, error)
}

// Manager は認証まわりのハンドラーをまとめた構造体です。
type Manager struct {
	cfg   *config.Config
	users UserStore
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, users UserStore) *Manager {
	return &Manager{cfg: cfg, users: users}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register は POST /register のハンドラーです。
// パスワードは bcrypt でハッシュ化して保存し、レスポンスには挿入IDだけを返します。
func (m *Manager) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELD",
			"message": "name・email・password を JSON で送ってください。",
		})
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELD",
			"message": "name・email・password をすべて指定してください。",
		})
		return
	}

	// 先に存在チェックを行うが、同時登録の競合はストア側のユニーク
	// インデックスで最終的に防がれる
	if _, err := m.users.FindByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "USER_EXISTS",
			"message": "このメールアドレスは既に登録されています。",
		})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondStoreError(c)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "パスワードの処理に失敗しました。",
		})
		return
	}

	insertedID, err := m.users.Create(c.Request.Context(), &store.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "USER_EXISTS",
				"message": "このメールアドレスは既に登録されています。",
			})
			return
		}
		respondStoreError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"acknowledged": true,
		"insertedId":   insertedID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login は POST /login のハンドラーです。
// ユーザー不在とパスワード不一致は区別せず、同一のレスポンスを返します。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELD",
			"message": "email と password を JSON で送ってください。",
		})
		return
	}

	user, err := m.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.respondInvalidCredentials(c)
			return
		}
		respondStoreError(c)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		m.respondInvalidCredentials(c)
		return
	}

	token, err := GenerateToken(user.Email, []byte(m.cfg.AccessTokenSecret), m.cfg.TokenTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "トークンの発行に失敗しました。",
		})
		return
	}

	maxAge := int(m.cfg.TokenTTL().Seconds())
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", m.secureCookie(), true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
	})
}

type changePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword は POST /change-password のハンドラーです。
func (m *Manager) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELD",
			"message": "email・oldPassword・newPassword を JSON で送ってください。",
		})
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.OldPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "MISSING_FIELD",
			"message": "email・oldPassword・newPassword をすべて指定してください。",
		})
		return
	}

	user, err := m.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "NOT_FOUND",
				"message": "ユーザーが見つかりません。",
			})
			return
		}
		respondStoreError(c)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INCORRECT_PASSWORD",
			"message": "現在のパスワードが正しくありません。",
		})
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "パスワードの処理に失敗しました。",
		})
		return
	}

	modified, err := m.users.UpdatePasswordHash(c.Request.Context(), req.Email, string(newHash))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "NOT_FOUND",
				"message": "ユーザーが見つかりません。",
			})
			return
		}
		respondStoreError(c)
		return
	}
	if modified == 0 {
		// 新旧ハッシュが一致した等で1件も更新されなかったケース
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "UPDATE_FAILED",
			"message": "パスワードの更新に失敗しました。",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "パスワードを変更しました。",
	})
}

// Logout は POST /logout のハンドラーです。
// クッキーを消すだけで、発行済みトークンは有効期限まで失効しません。
func (m *Manager) Logout(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.secureCookie(), true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ログアウトしました。",
	})
}

func (m *Manager) respondInvalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    "INVALID_CREDENTIALS",
		"message": "メールアドレスまたはパスワードが正しくありません。",
	})
}

func (m *Manager) secureCookie() bool {
	return m.cfg.GinMode == gin.ReleaseMode
}

func respondStoreError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "STORE_ERROR",
		"message": "データベース処理でエラーが発生しました。",
	})
}
