package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	chromem "github.com/philippgille/chromem-go"
	"github.com/yuqie6/growthlog/internal/schema"
)

// MemoryResult 记忆检索结果
type MemoryResult struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
}

// Embedder 文本嵌入生成器
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	IsConfigured() bool
}

// MemoryService 日报长期记忆
// 把每篇日报的反思内容向量化入库，供教练评语生成时检索相似的历史日报
type MemoryService struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
}

// NewMemoryService 创建记忆服务，storagePath 为向量库持久化目录
func NewMemoryService(embedder Embedder, storagePath string) (*MemoryService, error) {
	if storagePath == "" {
		storagePath = "./data/memory"
	}

	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("创建记忆存储目录失败: %w", err)
	}

	db, err := chromem.NewPersistentDB(storagePath, false)
	if err != nil {
		return nil, fmt.Errorf("创建向量数据库失败: %w", err)
	}

	collection, err := db.GetOrCreateCollection("reports", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}

	return &MemoryService{
		db:         db,
		collection: collection,
		embedder:   embedder,
	}, nil
}

// IndexReport 索引一篇日报，嵌入服务未配置时静默跳过
func (s *MemoryService) IndexReport(ctx context.Context, report *schema.DailyReport) error {
	if !s.embedder.IsConfigured() {
		slog.Debug("嵌入服务未配置，跳过日报索引")
		return nil
	}

	content := fmt.Sprintf("日期: %s\n标题: %s\n学习: %s\n课题: %s",
		report.Date, report.Title, report.TodayLearning, report.Struggles)

	embeddings, err := s.embedder.Embed(ctx, []string{content})
	if err != nil {
		return fmt.Errorf("生成嵌入失败: %w", err)
	}
	if len(embeddings) == 0 {
		return fmt.Errorf("嵌入结果为空")
	}

	doc := chromem.Document{
		ID:        report.ID,
		Content:   content,
		Embedding: embeddings[0],
		Metadata: map[string]string{
			"date":    report.Date,
			"user_id": report.UserID,
		},
	}

	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("添加文档失败: %w", err)
	}

	slog.Debug("日报已索引", "id", report.ID, "date", report.Date)
	return nil
}

// QuerySimilar 按语义检索相似日报
func (s *MemoryService) QuerySimilar(ctx context.Context, text string, topK int) ([]MemoryResult, error) {
	if !s.embedder.IsConfigured() {
		return nil, fmt.Errorf("嵌入服务未配置")
	}
	if topK <= 0 {
		topK = 5
	}

	// chromem 要求 n 不超过库内文档数
	if count := s.collection.Count(); count < topK {
		topK = count
	}
	if topK == 0 {
		return []MemoryResult{}, nil
	}

	queryEmb, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("生成查询嵌入失败: %w", err)
	}
	if len(queryEmb) == 0 {
		return nil, fmt.Errorf("查询嵌入为空")
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmb[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("向量搜索失败: %w", err)
	}

	memories := make([]MemoryResult, len(results))
	for i, r := range results {
		memories[i] = MemoryResult{
			ID:         r.ID,
			Date:       r.Metadata["date"],
			Content:    r.Content,
			Similarity: r.Similarity,
		}
	}
	return memories, nil
}
