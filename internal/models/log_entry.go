package models

import "time"

// LogEntry 是发送到日志管道 (Kafka) 的统一结构化日志格式。
type LogEntry struct {
	// ServiceName 是产生这条日志的服务名称，例如 "QueryWise"。
	ServiceName string `json:"service_name"`

	// TraceID 串联同一个 HTTP 请求产生的所有日志。
	TraceID string `json:"trace_id,omitempty"`

	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`

	// RequestInfo 描述触发这条日志的 HTTP 请求。
	RequestInfo *RequestInfo `json:"request_info,omitempty"`

	// Error 只在内部日志中出现，绝不会返回给调用方。
	Error *ErrorInfo `json:"error,omitempty"`

	// Payload 存放其他与业务相关的结构化数据。
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// RequestInfo 存储了关于 HTTP 请求的上下文信息。
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
}

// ErrorInfo 存储了关于错误的结构化信息。
type ErrorInfo struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`        // 错误类别，例如 "StoreUnavailable"
	StatusCode int    `json:"status_code,omitempty"` // 对应的 HTTP 状态码
}
