package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// User は users コレクションのドキュメントです。
// PasswordHash は bcrypt ハッシュで、レスポンスには決して含めません。
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password" json:"-"`
}

// UserStore は users コレクションへのアクセスを提供します。
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore は UserStore を作成します。
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection("users")}
}

// EnsureIndexes は email のユニークインデックスを作成します。
// 登録時の存在チェックと挿入は別クエリのため、同時登録の競合はこのインデックスで防ぎます。
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを検索します。
// 見つからない場合は ErrNotFound を返します。
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// Create はユーザーを保存し、挿入されたドキュメントのIDを返します。
// email のユニークインデックス違反は ErrDuplicateUser に変換します。
func (s *UserStore) Create(ctx context.Context, user *User) (string, error) {
	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateUser
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return insertedIDString(res.InsertedID), nil
}

// UpdatePasswordHash は指定ユーザーのパスワードハッシュを差し替え、更新件数を返します。
// 対象が存在しない場合は ErrNotFound を返します。更新件数 0 の判断は呼び出し側が行います。
func (s *UserStore) UpdatePasswordHash(ctx context.Context, email, newHash string) (int64, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": newHash}},
	)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return 0, ErrNotFound
	}
	return res.ModifiedCount, nil
}

func insertedIDString(id any) string {
	if oid, ok := id.(bson.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
