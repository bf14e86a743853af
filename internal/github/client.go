package github

import (
	"context"
	"fmt"
	"sync"
	"time"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Client GitHub API 客户端
// 显式构造、显式注入，Token 轮换通过 Reset 完成，不依赖任何包级单例。
type Client struct {
	mu    sync.RWMutex
	token string
	api   *gh.Client
}

// NewClient 创建客户端
func NewClient(token string) *Client {
	c := &Client{}
	c.Reset(token)
	return c
}

// Reset 用新 Token 重建底层客户端（重新认证）
func (c *Client) Reset(token string) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.api = gh.NewClient(httpClient)
}

// IsConfigured 是否已配置 Token
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Client) client() *gh.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.api
}

// RateLimit 速率限制信息
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// GetRateLimit 查询当前速率限制
func (c *Client) GetRateLimit(ctx context.Context) (*RateLimit, error) {
	limits, _, err := c.client().RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询速率限制失败: %w", err)
	}
	core := limits.GetCore()
	return &RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

// GetAuthenticatedUser 获取认证用户登录名（连接测试用）
func (c *Client) GetAuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client().Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("获取认证用户失败: %w", err)
	}
	return user.GetLogin(), nil
}
