package models

// PropCount 是上下文记录中可选属性 Prop_0…Prop_6 的数量。
const PropCount = 7

// IncomingRequest 是经过校验的入站请求。
type IncomingRequest struct {
	Question   string `json:"question"`       // 用户提出的问题，必填且不能为空白。
	DateFilter string `json:"fecha,omitempty"` // 可选的日期过滤值，格式为 YYYY-MM-DD；空字符串表示未提供。
}

// HasDateFilter 报告请求是否携带了日期过滤值。
func (r IncomingRequest) HasDateFilter() bool {
	return r.DateFilter != ""
}

// ContextRecord 是从文档数据库中读取的一条上下文记录。
// Props[i] 对应文档字段 Prop_i，nil 表示字段缺失或为 null。
type ContextRecord struct {
	ID    string
	Props [PropCount]*string
}

// CompletionRequest 在调用模型之前构造，调用结束后即丢弃。
type CompletionRequest struct {
	SystemContext string // 检索得到的上下文文本。
	UserQuestion  string // 用户的问题。
	MaxTokens     int    // 生成内容的最大 token 数。
}
