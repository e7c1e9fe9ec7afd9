package store

import (
	"errors"
	"fmt"
	"strings"

	"querywise/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoContextFound 表示按日期检索时没有任何记录满足条件。
var ErrNoContextFound = errors.New("no matching context records")

// nullValue 表示渲染后的上下文中缺失或为 null 的属性。
const nullValue = "null"

// PropField 返回第 i 个可选属性对应的文档字段名。
func PropField(i int) string {
	return fmt.Sprintf("Prop_%d", i)
}

// FormatRecord 把一条记录渲染为单行，依次列出 id 和所有属性。
// 缺失的属性显示为 null，不会被省略。
func FormatRecord(r models.ContextRecord) string {
	var sb strings.Builder
	sb.WriteString("id: ")
	sb.WriteString(r.ID)
	for i, p := range r.Props {
		sb.WriteString(", ")
		sb.WriteString(PropField(i))
		sb.WriteString(": ")
		if p == nil {
			sb.WriteString(nullValue)
		} else {
			sb.WriteString(*p)
		}
	}
	return sb.String()
}

// FormatRecords 每条记录占一行。
func FormatRecords(records []models.ContextRecord) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, FormatRecord(r))
	}
	return strings.Join(lines, "\n")
}

// recordFromDocument 转换原始文档。记录 id 优先取 "id" 字段 (Cosmos DB)，
// 不存在时取 "_id"。
func recordFromDocument(doc bson.M) models.ContextRecord {
	var r models.ContextRecord
	if id, ok := doc["id"]; ok && id != nil {
		r.ID = stringify(id)
	} else if id, ok := doc["_id"]; ok && id != nil {
		r.ID = stringify(id)
	}
	for i := range r.Props {
		v, ok := doc[PropField(i)]
		if !ok || v == nil {
			continue
		}
		s := stringify(v)
		r.Props[i] = &s
	}
	return r
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case primitive.ObjectID:
		return t.Hex()
	default:
		return fmt.Sprintf("%v", t)
	}
}
