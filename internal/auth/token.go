package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken は署名検証を通らなかったトークンを示します。
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims はセッショントークンの内容です。標準クレームに加えて
// ユーザーのメールアドレスを1つだけ持ちます。
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateToken はメールアドレスを主張する HS256 署名付きトークンを発行します。
// トークンはサーバー側に保存されず、有効期限まで失効できません。
func GenerateToken(email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})
	return token.SignedString(secret)
}

// EmailFromToken はトークンの署名と有効期限を検証し、メールアドレスを取り出します。
func EmailFromToken(raw string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
