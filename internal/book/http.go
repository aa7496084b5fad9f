// Package book は book コレクションに対する CRUD ハンドラーを提供します。
package book

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/salehin0531/book-server/internal/store"
)

// Store はハンドラーが必要とする book 永続化の契約です。
type Store interface {
	List(ctx context.Context) ([]bson.M, error)
	Get(ctx context.Context, id string) (bson.M, error)
	Insert(ctx context.Context, doc bson.M) (string, error)
	Upsert(ctx context.Context, id string, fields bson.M) (*store.UpsertResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// ListHandler は GET /book のハンドラーを返します。認証は不要です。
func ListHandler(st Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := st.List(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		if docs == nil {
			docs = []bson.M{}
		}
		c.JSON(http.StatusOK, docs)
	}
}

// GetHandler は GET /book/:id のハンドラーを返します。
func GetHandler(st Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := st.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// CreateHandler は POST /book のハンドラーを返します。
// ドキュメントの内容はクライアント任せで、サーバー側ではスキーマを検証しません。
func CreateHandler(st Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc bson.M
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "book ドキュメントを JSON で送ってください。",
			})
			return
		}

		insertedID, err := st.Insert(c.Request.Context(), doc)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"acknowledged": true,
			"insertedId":   insertedID,
		})
	}
}

// UpdateHandler は PUT /book/:id のハンドラーを返します。
// 該当IDが存在しない場合は新規作成します（upsert）。
func UpdateHandler(st Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields bson.M
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "更新内容を JSON で送ってください。",
			})
			return
		}

		// _id は更新対象から外す。URL の :id が常に優先される
		delete(fields, "_id")

		result, err := st.Upsert(c.Request.Context(), c.Param("id"), fields)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// DeleteHandler は DELETE /book/:id のハンドラーを返します。
func DeleteHandler(st Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := st.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"acknowledged": true,
			"deletedCount": deleted,
		})
	}
}

func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_ID",
			"message": "指定されたIDの形式が正しくありません。",
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "指定されたドキュメントが見つかりません。",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "STORE_ERROR",
			"message": "データベース処理でエラーが発生しました。",
		})
	}
}
