package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SiliconFlowClient SiliconFlow API 客户端（嵌入生成）
type SiliconFlowClient struct {
	apiKey         string
	baseURL        string
	embeddingModel string
	client         *http.Client
}

// SiliconFlowConfig 配置
type SiliconFlowConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
}

// NewSiliconFlowClient 创建客户端
func NewSiliconFlowClient(cfg *SiliconFlowConfig) *SiliconFlowClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.siliconflow.cn"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "BAAI/bge-m3"
	}

	return &SiliconFlowClient{
		apiKey:         cfg.APIKey,
		baseURL:        cfg.BaseURL,
		embeddingModel: cfg.EmbeddingModel,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage Usage `json:"usage"`
}

// Embed 批量生成文本嵌入，返回顺序与输入一致
func (c *SiliconFlowClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := embeddingRequest{
		Model: c.embeddingModel,
		Input: texts,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("SiliconFlow API 错误", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("API 错误: %s", resp.Status)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("嵌入数量不匹配: 期望 %d, 实际 %d", len(texts), len(embResp.Data))
	}

	// 按 index 归位，响应顺序不保证与输入一致
	embeddings := make([][]float32, len(texts))
	for _, d := range embResp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("嵌入 index 越界: %d", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}

	slog.Debug("SiliconFlow 嵌入生成成功",
		"count", len(texts),
		"tokens", embResp.Usage.TotalTokens,
	)

	return embeddings, nil
}

// IsConfigured 检查是否已配置
func (c *SiliconFlowClient) IsConfigured() bool {
	return c.apiKey != ""
}
