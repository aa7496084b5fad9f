// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/salehin0531/book-server/internal/auth"
	"github.com/salehin0531/book-server/internal/book"
	"github.com/salehin0531/book-server/internal/config"
	"github.com/salehin0531/book-server/internal/store"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDB への接続と疎通確認
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Failed to disconnect from MongoDB: %v", err)
		}
	}()

	db := client.Database(cfg.DBName)
	users := store.NewUserStore(db)
	books := store.NewBookStore(db)

	// email のユニークインデックス（同時登録の競合防止）
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, cfg, users, books)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Book server is running on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleRoot は稼働確認用のバナーを返します。
func handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "Book making server is running")
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "book-server-api",
		"version": "0.1.0",
	})
}

// setupRoutes は認証まわりと book CRUD の配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, users *store.UserStore, books *store.BookStore) {
	router.GET("/", handleRoot)
	router.GET("/health", handleHealth)

	authManager := auth.NewManager(cfg, users)

	// 認証エンドポイント（セッション不要）
	router.POST("/register", authManager.Register)
	router.POST("/login", authManager.Login)
	router.POST("/change-password", authManager.ChangePassword)
	router.POST("/logout", authManager.Logout)

	// 一覧だけは誰でも閲覧できる
	router.GET("/book", book.ListHandler(books))

	// 取得・作成・更新・削除はセッション必須
	protected := router.Group("/book")
	protected.Use(authManager.RequireSession())
	{
		protected.GET("/:id", book.GetHandler(books))
		protected.POST("", book.CreateHandler(books))
		protected.PUT("/:id", book.UpdateHandler(books))
		protected.DELETE("/:id", book.DeleteHandler(books))
	}
}
