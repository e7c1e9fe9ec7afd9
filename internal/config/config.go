package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 检索模式。
const (
	ModeFAQ   = "faq"   // 无日期语义的扁平表，拼接所有 context 字段。
	ModeDated = "dated" // 按 Prop_0 / Prop_1 日期字段过滤和排序的文档集合。
)

// LLM 提供商。
const (
	ProviderOpenAIChat       = "openai-chat"
	ProviderAzureChat        = "azure-chat"
	ProviderOpenAICompletion = "openai-completion"
	ProviderOllama           = "ollama"
	ProviderGemini           = "gemini"
)

// 旧式补全提示词与聊天提示词的默认 token 上限。
const (
	DefaultLegacyMaxTokens = 100
	DefaultChatMaxTokens   = 500
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了 HTTP 服务器的监听地址和超时。
type ServerConfig struct {
	Address         string `yaml:"address"`         // 监听地址，例如 ":8080"
	ReadTimeout     string `yaml:"readTimeout"`     // 例如: "15s"
	WriteTimeout    string `yaml:"writeTimeout"`    // 例如: "60s"
	ShutdownTimeout string `yaml:"shutdownTimeout"` // 例如: "5s"
}

// KafkaLogConfig 定义了日志投递到 Kafka 的配置。Brokers 为空时不启用。
type KafkaLogConfig struct {
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic"`   // 日志主题
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string         `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
	Kafka KafkaLogConfig `yaml:"kafka"` // 可选的 Kafka 日志投递
}

// RetrievalConfig 定义了上下文检索策略。
type RetrievalConfig struct {
	Mode         string `yaml:"mode"`         // "faq" 或 "dated"
	QueryTimeout string `yaml:"queryTimeout"` // 单次数据库查询的超时，例如 "10s"
	RecentLimit  int    `yaml:"recentLimit"`  // 未提供日期时返回的最近记录数
}

// OpenAIConfig 包含了 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`  // API 密钥
	BaseURL string `yaml:"baseURL"` // 可选，覆盖默认的 https://api.openai.com/v1
	Model   string `yaml:"model"`   // 模型名称
}

// AzureConfig 包含了 Azure OpenAI 部署的配置。
type AzureConfig struct {
	Endpoint   string `yaml:"endpoint"`   // 例如 https://<resource>.openai.azure.com
	APIKey     string `yaml:"apiKey"`     // API 密钥
	Deployment string `yaml:"deployment"` // 部署名称
	APIVersion string `yaml:"apiVersion"` // 例如 "2024-02-01"
}

// OllamaConfig 包含了本地 Ollama 服务的配置。
type OllamaConfig struct {
	Host  string `yaml:"host"`  // 例如 http://localhost:11434
	Model string `yaml:"model"` // 模型名称
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API 密钥
	Model  string `yaml:"model"`  // Gemini 模型名称
}

// LLMConfig 包含了不同 LLM 提供商的配置。
type LLMConfig struct {
	Provider  string       `yaml:"provider"`  // 见 Provider* 常量
	MaxTokens int          `yaml:"maxTokens"` // 为 0 时按提供商和检索模式取默认值
	OpenAI    OpenAIConfig `yaml:"openai"`
	Azure     AzureConfig  `yaml:"azure"`
	Ollama    OllamaConfig `yaml:"ollama"`
	Gemini    GeminiConfig `yaml:"gemini"`
}

// MongoConfig 定义了 MongoDB (或 Cosmos DB for MongoDB) 的连接配置。
type MongoConfig struct {
	Address    string `yaml:"address"`    // 连接 URI
	Username   string `yaml:"username"`   // 用户名
	Password   string `yaml:"password"`   // 密码
	Database   string `yaml:"database"`   // 数据库名称
	Collection string `yaml:"collection"` // 上下文记录所在的集合
}

// MySQLConfig 定义了 FAQ 表所在 MySQL 数据库的连接配置。
type MySQLConfig struct {
	DSN             string `yaml:"dsn"`             // 完整 DSN，优先于下列分项
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	Table           string `yaml:"table"`           // FAQ 表名
	Column          string `yaml:"column"`          // 文本字段名
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// RedisConfig 定义了 Redis 数据库的连接配置，仅用于分布式限流。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	MongoDB MongoConfig `yaml:"mongodb"`
	MySQL   MySQLConfig `yaml:"mysql"`
	Redis   RedisConfig `yaml:"redis"`
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// FixedWindowConfig 定义了基于 Redis 的固定窗口计数器配置。
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "30s"
	Key    string `yaml:"key"`    // Redis 键前缀
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // 支持: "tokenBucket", "redisFixedWindow"
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
	FixedWindow FixedWindowConfig `yaml:"fixedWindow"`
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// AppConfig 是整个 YAML 文件的根结构。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Logger     LoggerConfig     `yaml:"logger"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	LLM        LLMConfig        `yaml:"llm"`
	Databases  DatabaseConfigs  `yaml:"databases"`
	Middleware MiddlewareConfig `yaml:"middleware"`
}

// LoadConfig 从指定路径加载 YAML 配置，然后用环境变量覆盖，最后补齐默认值。
// 文件不存在时只使用环境变量和默认值。
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
		default:
			if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
				return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
			}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// envOverrides 列出环境变量与配置字段的对应关系。
func (c *AppConfig) envOverrides() map[string]*string {
	return map[string]*string{
		"OPENAI_API_KEY":           &c.LLM.OpenAI.APIKey,
		"OPENAI_BASE_URL":          &c.LLM.OpenAI.BaseURL,
		"AZURE_OPENAI_ENDPOINT":    &c.LLM.Azure.Endpoint,
		"AZURE_OPENAI_API_KEY":     &c.LLM.Azure.APIKey,
		"AZURE_OPENAI_DEPLOYMENT":  &c.LLM.Azure.Deployment,
		"AZURE_OPENAI_API_VERSION": &c.LLM.Azure.APIVersion,
		"GEMINI_API_KEY":           &c.LLM.Gemini.APIKey,
		"OLLAMA_HOST":              &c.LLM.Ollama.Host,
		"SQL_CONNECTION_STRING":    &c.Databases.MySQL.DSN,
		"MONGODB_URI":              &c.Databases.MongoDB.Address,
		"QUERYWISE_RETRIEVAL_MODE": &c.Retrieval.Mode,
		"QUERYWISE_LLM_PROVIDER":   &c.LLM.Provider,
	}
}

func (c *AppConfig) applyEnv() {
	for key, field := range c.envOverrides() {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*field = value
		}
	}
}

func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "QueryWise"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Kafka.Topic == "" {
		c.Logger.Kafka.Topic = "querywise_logs"
	}
	if c.Retrieval.Mode == "" {
		c.Retrieval.Mode = ModeDated
	}
	if c.Retrieval.QueryTimeout == "" {
		c.Retrieval.QueryTimeout = "10s"
	}
	if c.Retrieval.RecentLimit <= 0 {
		c.Retrieval.RecentLimit = 5
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAIChat
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = c.defaultMaxTokens()
	}
	if c.LLM.OpenAI.Model == "" {
		if c.LLM.Provider == ProviderOpenAICompletion {
			c.LLM.OpenAI.Model = "gpt-3.5-turbo-instruct"
		} else {
			c.LLM.OpenAI.Model = "gpt-4o-mini"
		}
	}
	if c.LLM.Azure.APIVersion == "" {
		c.LLM.Azure.APIVersion = "2024-02-01"
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = "gemini-1.5-flash"
	}
	if c.LLM.Ollama.Model == "" {
		c.LLM.Ollama.Model = "llama3"
	}
	if c.Databases.MongoDB.Collection == "" {
		c.Databases.MongoDB.Collection = "records"
	}
	if c.Databases.MySQL.Table == "" {
		c.Databases.MySQL.Table = "FAQ"
	}
	if c.Databases.MySQL.Column == "" {
		c.Databases.MySQL.Column = "context"
	}
	if c.Middleware.RateLimiter.Algorithm == "" {
		c.Middleware.RateLimiter.Algorithm = "tokenBucket"
	}
}

// defaultMaxTokens: 旧式补全提示词和 faq 模式为 100，dated 模式下的聊天提示词为 500。
func (c *AppConfig) defaultMaxTokens() int {
	switch c.LLM.Provider {
	case ProviderOpenAICompletion, ProviderOllama:
		return DefaultLegacyMaxTokens
	}
	if c.Retrieval.Mode == ModeFAQ {
		return DefaultLegacyMaxTokens
	}
	return DefaultChatMaxTokens
}

// Validate 检查启动所需的配置是否齐全。
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.Retrieval.Mode {
	case ModeFAQ:
		mc := c.Databases.MySQL
		if mc.DSN == "" && mc.Address == "" {
			errs = append(errs, errors.New("faq 模式需要 databases.mysql.dsn 或 SQL_CONNECTION_STRING"))
		}
	case ModeDated:
		mc := c.Databases.MongoDB
		if mc.Address == "" {
			errs = append(errs, errors.New("dated 模式需要 databases.mongodb.address 或 MONGODB_URI"))
		}
		if mc.Database == "" {
			errs = append(errs, errors.New("dated 模式需要 databases.mongodb.database"))
		}
	default:
		errs = append(errs, fmt.Errorf("未知的检索模式: %q", c.Retrieval.Mode))
	}

	switch c.LLM.Provider {
	case ProviderOpenAIChat, ProviderOpenAICompletion:
		if c.LLM.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("OpenAI 需要 llm.openai.apiKey 或 OPENAI_API_KEY"))
		}
	case ProviderAzureChat:
		az := c.LLM.Azure
		if az.Endpoint == "" || az.APIKey == "" || az.Deployment == "" {
			errs = append(errs, errors.New("Azure OpenAI 需要 endpoint、apiKey 和 deployment"))
		}
	case ProviderGemini:
		if c.LLM.Gemini.APIKey == "" {
			errs = append(errs, errors.New("Gemini 需要 llm.gemini.apiKey 或 GEMINI_API_KEY"))
		}
	case ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("不支持的 LLM 提供商: %q", c.LLM.Provider))
	}

	if _, err := c.QueryTimeout(); err != nil {
		errs = append(errs, err)
	}
	if rl := c.Middleware.RateLimiter; rl.Enabled && rl.Algorithm == "redisFixedWindow" && c.Databases.Redis.Address == "" {
		errs = append(errs, errors.New("redisFixedWindow 限流需要 databases.redis.address"))
	}

	return errors.Join(errs...)
}

// QueryTimeout 返回解析后的数据库查询超时。
func (c *AppConfig) QueryTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Retrieval.QueryTimeout)
	if err != nil {
		return 0, fmt.Errorf("无效的 retrieval.queryTimeout: %w", err)
	}
	return d, nil
}

// ListenAddress 返回 HTTP 监听地址。Azure Functions 自定义处理程序通过
// FUNCTIONS_CUSTOMHANDLER_PORT 指定端口，此时优先使用它。
func (c *AppConfig) ListenAddress() string {
	if port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT"); port != "" {
		return ":" + port
	}
	return c.Server.Address
}

// ParseDuration 解析可选的时长字符串，空字符串返回 fallback。
func ParseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
