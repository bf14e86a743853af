package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	AI      AIConfig      `mapstructure:"ai"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	LogLevel    string `mapstructure:"log_level"`
	Timezone    string `mapstructure:"timezone"`     // 统计时区，所有按天分组以此为准
	DefaultUser string `mapstructure:"default_user"` // 请求未携带用户标识时的默认用户
}

// ServerConfig 本地 HTTP 配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	MemoryPath string `mapstructure:"memory_path"` // 向量记忆库目录
}

// GitHubConfig GitHub 接入配置
type GitHubConfig struct {
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
}

// AIConfig AI 配置
type AIConfig struct {
	DeepSeek    DeepSeekConfig    `mapstructure:"deepseek"`
	SiliconFlow SiliconFlowConfig `mapstructure:"siliconflow"`
}

// DeepSeekConfig DeepSeek 配置
type DeepSeekConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SiliconFlowConfig SiliconFlow 嵌入配置
type SiliconFlowConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("GROWTHLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.GitHub.Token = expandEnv(cfg.GitHub.Token)
	cfg.AI.DeepSeek.APIKey = expandEnv(cfg.AI.DeepSeek.APIKey)
	cfg.AI.SiliconFlow.APIKey = expandEnv(cfg.AI.SiliconFlow.APIKey)

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Storage.MemoryPath = resolvePath(cfg.Storage.MemoryPath)

	return &cfg, nil
}

// Location 解析统计时区，解析失败时回退本地时区
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		slog.Warn("时区解析失败，回退本地时区", "timezone", c.App.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "growthlog")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.timezone", "Asia/Tokyo")
	v.SetDefault("app.default_user", "local")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8700")

	// Storage
	v.SetDefault("storage.db_path", "./data/growthlog.db")
	v.SetDefault("storage.memory_path", "./data/memory")

	// GitHub
	v.SetDefault("github.token", "${GITHUB_TOKEN}")

	// AI
	v.SetDefault("ai.deepseek.base_url", "https://api.deepseek.com")
	v.SetDefault("ai.deepseek.model", "deepseek-chat")
	v.SetDefault("ai.siliconflow.base_url", "https://api.siliconflow.cn")
	v.SetDefault("ai.siliconflow.embedding_model", "BAAI/bge-m3")
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
