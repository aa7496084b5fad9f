// Package store は MongoDB への永続化を担当します。
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrNotFound は対象のドキュメントが存在しないことを示します。
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicateUser は同じメールアドレスのユーザーが既に存在することを示します。
	ErrDuplicateUser = errors.New("store: user already exists")
	// ErrInvalidID は ObjectID として解釈できない識別子を示します。
	ErrInvalidID = errors.New("store: invalid object id")
)

// Connect は MongoDB クライアントを生成し、疎通確認まで行います。
// クライアントはプロセス全体で使い回す前提で、呼び出し側に注入されます。
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}
