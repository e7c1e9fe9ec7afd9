package store

import (
	"context"
	"fmt"

	"querywise/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// hyphenatedDate 匹配包含两个连字符的值，是对 YYYY-MM-DD 的宽松形状检查，
// 不做其他校验。
const hyphenatedDate = "-.*-"

// DefaultRecentLimit 是未提供日期时返回的最近记录数。
const DefaultRecentLimit = 5

// DatedStore 从文档集合中检索上下文，记录的 Prop_0 和 Prop_1 为日期字段。
type DatedStore struct {
	collection  *mongo.Collection
	recentLimit int64
}

// NewDatedStore 基于指定集合创建一个 DatedStore。
func NewDatedStore(db *mongo.Database, collectionName string, recentLimit int) *DatedStore {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &DatedStore{
		collection:  db.Collection(collectionName),
		recentLimit: int64(recentLimit),
	}
}

// DateFilter 构建查询条件。日期作为值绑定，不会拼接进查询文本；按字典序比较。
func DateFilter(dateFilter string) bson.M {
	clause := func(field string) bson.M {
		cond := bson.M{
			"$exists": true,
			"$ne":     nil,
			"$type":   "string",
			"$regex":  hyphenatedDate,
		}
		if dateFilter != "" {
			cond["$gte"] = dateFilter
		}
		return bson.M{field: cond}
	}
	return bson.M{"$or": bson.A{clause(PropField(0)), clause(PropField(1))}}
}

// FindOptions 按 Prop_0 降序排列。未提供日期时只返回最近的几条记录，
// 提供日期时返回全部匹配记录。
func (s *DatedStore) FindOptions(req models.IncomingRequest) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: PropField(0), Value: -1}})
	if !req.HasDateFilter() {
		opts.SetLimit(s.recentLimit)
	}
	return opts
}

// Retrieve 返回逐行渲染的匹配记录；没有匹配时返回 ErrNoContextFound。
func (s *DatedStore) Retrieve(ctx context.Context, req models.IncomingRequest) (string, error) {
	cursor, err := s.collection.Find(ctx, DateFilter(req.DateFilter), s.FindOptions(req))
	if err != nil {
		return "", fmt.Errorf("find context records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return "", fmt.Errorf("decode context records: %w", err)
	}
	if len(docs) == 0 {
		return "", ErrNoContextFound
	}

	records := make([]models.ContextRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, recordFromDocument(doc))
	}
	return FormatRecords(records), nil
}

// Ping 检查集合所在的部署是否可达。
func (s *DatedStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, nil)
}
