package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// 数据源模式，替代原先进程级的isMockEnv开关：
// 由配置显式注入各服务，测试和离线演示切换到内存数据源
const (
	DataModeLive = "live"
	DataModeMock = "mock"
)

// Config 应用配置
type Config struct {
	Port     int
	MongoURI string
	MongoDB  string
	JWTKey   string
	DataMode string
	Debug    bool

	// SMTP配置，发信为尽力而为，缺省时只落库不投递
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	// .env存在时优先加载，缺失不报错
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

	return &Config{
		Port:     port,
		MongoURI: getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "crm"),
		JWTKey:   getEnv("JWT_KEY", "your-secret-key"), // 实际环境应替换为安全密钥
		DataMode: getEnv("DATA_MODE", DataModeLive),
		Debug:    getEnv("GIN_MODE", "debug") == "debug",

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: smtpPort,
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "crm@growyourneed.com"),
	}
}

// IsMock 是否使用内存数据源
func (c *Config) IsMock() bool {
	return c.DataMode == DataModeMock
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
