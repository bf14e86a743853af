package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/growthlog/internal/schema"
	"gorm.io/gorm"
)

// ReportRepository 日报仓储
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建仓储
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create 创建日报
func (r *ReportRepository) Create(ctx context.Context, report *schema.DailyReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("创建日报失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 获取日报，不存在时返回 (nil, nil)
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*schema.DailyReport, error) {
	var report schema.DailyReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询日报失败: %w", err)
	}
	return &report, nil
}

// ListByUserID 获取用户全部日报，按日期降序（成长引擎要求最新在前）
func (r *ReportRepository) ListByUserID(ctx context.Context, userID string) ([]schema.DailyReport, error) {
	var reports []schema.DailyReport
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("查询日报列表失败: %w", err)
	}
	return reports, nil
}

// GetByUserIDAndDate 获取用户指定日期的日报，不存在时返回 (nil, nil)
// 用于保证同一自然日至多一条的约束
func (r *ReportRepository) GetByUserIDAndDate(ctx context.Context, userID, date string) (*schema.DailyReport, error) {
	var report schema.DailyReport
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("按日期查询日报失败: %w", err)
	}
	return &report, nil
}

// ListByUserIDBetween 获取用户日期区间内的日报（闭区间，按日期升序）
func (r *ReportRepository) ListByUserIDBetween(ctx context.Context, userID, startDate, endDate string) ([]schema.DailyReport, error) {
	var reports []schema.DailyReport
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, startDate, endDate).
		Order("date ASC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("查询日期范围日报失败: %w", err)
	}
	return reports, nil
}

// Update 按 ID 更新指定字段，返回更新后的日报，不存在时返回 (nil, nil)
func (r *ReportRepository) Update(ctx context.Context, id string, fields map[string]any) (*schema.DailyReport, error) {
	res := r.db.WithContext(ctx).
		Model(&schema.DailyReport{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("更新日报失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Delete 按 ID 删除日报
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&schema.DailyReport{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除日报失败: %w", err)
	}
	return nil
}

// ListTechTagNames 返回用户历史日报中出现过的全部标签名（去重，首次出现顺序）
// 技术栈分析器据此判定 is_new
func (r *ReportRepository) ListTechTagNames(ctx context.Context, userID string) ([]string, error) {
	var lists []schema.TechTagList
	err := r.db.WithContext(ctx).
		Model(&schema.DailyReport{}).
		Where("user_id = ?", userID).
		Order("date ASC").
		Pluck("tech_tags", &lists).Error
	if err != nil {
		return nil, fmt.Errorf("查询历史技术标签失败: %w", err)
	}

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, tags := range lists {
		for _, tag := range tags {
			if _, ok := seen[tag.Name]; ok {
				continue
			}
			seen[tag.Name] = struct{}{}
			names = append(names, tag.Name)
		}
	}
	return names, nil
}
