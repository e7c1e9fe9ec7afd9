package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"querywise/internal/models"

	"gorm.io/gorm"
)

// FAQStore 从一张没有日期语义的扁平表中读取上下文。
// 表为空时返回空上下文，而不是错误。
type FAQStore struct {
	db     *gorm.DB
	table  string
	column string
}

// NewFAQStore 创建一个读取 table.column 的 FAQStore。
func NewFAQStore(db *gorm.DB, table, column string) *FAQStore {
	return &FAQStore{db: db, table: table, column: column}
}

// Retrieve 用单个空格拼接所有非 NULL 的文本值，忽略日期过滤条件。
func (s *FAQStore) Retrieve(ctx context.Context, _ models.IncomingRequest) (string, error) {
	var values []sql.NullString
	if err := s.db.WithContext(ctx).Table(s.table).Pluck(s.column, &values).Error; err != nil {
		return "", fmt.Errorf("select %s from %s: %w", s.column, s.table, err)
	}

	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v.Valid {
			parts = append(parts, v.String)
		}
	}
	return strings.Join(parts, " "), nil
}

// Ping 检查底层连接池是否可用。
func (s *FAQStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
