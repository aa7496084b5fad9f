package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UpsertResult は更新（または挿入）結果の件数をまとめたものです。
type UpsertResult struct {
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// BookStore は book コレクションへのアクセスを提供します。
// ドキュメントのスキーマはサーバー側では強制しません。
type BookStore struct {
	coll *mongo.Collection
}

// NewBookStore は BookStore を作成します。
func NewBookStore(db *mongo.Database) *BookStore {
	return &BookStore{coll: db.Collection("book")}
}

// List は全ドキュメントを返します。
func (s *BookStore) List(ctx context.Context) ([]bson.M, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

// Get はIDでドキュメントを1件取得します。
func (s *BookStore) Get(ctx context.Context, id string) (bson.M, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var doc bson.M
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

// Insert はドキュメントを挿入し、生成されたIDを返します。
func (s *BookStore) Insert(ctx context.Context, doc bson.M) (string, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return insertedIDString(res.InsertedID), nil
}

// Upsert は指定IDのドキュメントへ fields を $set で適用します。
// 該当IDが存在しない場合は新規ドキュメントとして挿入します（upsert）。
func (s *BookStore) Upsert(ctx context.Context, id string, fields bson.M) (*UpsertResult, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := &UpsertResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		result.UpsertedID = insertedIDString(res.UpsertedID)
	}
	return result, nil
}

// Delete は指定IDのドキュメントを削除し、削除件数を返します。
func (s *BookStore) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, ErrInvalidID
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.DeletedCount, nil
}
