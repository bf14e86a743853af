package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath 返回默认配置文件路径（可执行文件目录下）
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// WriteFile 将配置持久化到 YAML 文件（设置保存接口使用）
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":         cfg.App.Name,
			"version":      cfg.App.Version,
			"log_level":    cfg.App.LogLevel,
			"timezone":     cfg.App.Timezone,
			"default_user": cfg.App.DefaultUser,
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
		"storage": map[string]any{
			"db_path":     cfg.Storage.DBPath,
			"memory_path": cfg.Storage.MemoryPath,
		},
		"github": map[string]any{
			"username": cfg.GitHub.Username,
			"token":    cfg.GitHub.Token,
		},
		"ai": map[string]any{
			"deepseek": map[string]any{
				"api_key":  cfg.AI.DeepSeek.APIKey,
				"base_url": cfg.AI.DeepSeek.BaseURL,
				"model":    cfg.AI.DeepSeek.Model,
			},
			"siliconflow": map[string]any{
				"api_key":         cfg.AI.SiliconFlow.APIKey,
				"base_url":        cfg.AI.SiliconFlow.BaseURL,
				"embedding_model": cfg.AI.SiliconFlow.EmbeddingModel,
			},
		},
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
