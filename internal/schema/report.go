package schema

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 变更规模（按当日总变更行数分档）
const (
	ChangeSizeS = "S" // < 100 行
	ChangeSizeM = "M" // < 500 行
	ChangeSizeL = "L" // >= 500 行
)

// ClassifyChangeSize 按变更行数分档，纯函数，无错误分支
func ClassifyChangeSize(linesChanged int) string {
	switch {
	case linesChanged < 100:
		return ChangeSizeS
	case linesChanged < 500:
		return ChangeSizeM
	default:
		return ChangeSizeL
	}
}

// DailyReport 每日成长日报
// 约束：同一用户同一自然日至多一条（由仓储在创建时保证）
// 数据量级：每用户每年 365 条
type DailyReport struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	UserID         string      `gorm:"size:64;index:idx_reports_user_date" json:"user_id"`
	Date           string      `gorm:"size:10;index:idx_reports_user_date" json:"date"` // YYYY-MM-DD（冗余字段，所有按天分组都以它为键）
	Title          string      `gorm:"size:300" json:"title"`
	TodayLearning  string      `gorm:"type:text" json:"today_learning"`
	Struggles      string      `gorm:"type:text" json:"struggles"`
	Tomorrow       string      `gorm:"type:text" json:"tomorrow"`
	GithubURL      string      `gorm:"size:500" json:"github_url"`
	PRCount        int         `json:"pr_count"`
	CommitCount    int         `json:"commit_count"`
	LinesChanged   int         `json:"lines_changed"`
	ChangeSize     string      `gorm:"size:1" json:"change_size"`         // S / M / L
	PRSummary      string      `gorm:"size:1000" json:"pr_summary"`       // 生成的活动摘要，上限 1000 字符
	TechTags       TechTagList `gorm:"type:text" json:"tech_tags"`        // 当日使用的技术标签
	AICoachComment string      `gorm:"type:text" json:"ai_coach_comment"` // AI 教练评语（可选，非核心派生）
	CreatedAt      time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DailyReport) TableName() string {
	return "daily_reports"
}

// TechTag 技术标签
// IsNew 相对该用户此前所有日报中出现过的标签集合判定
type TechTag struct {
	Name  string `json:"name"`
	IsNew bool   `json:"is_new"`
}

// TechTagList 以 JSON 文本落库的标签列表
type TechTagList []TechTag

// Value 实现 driver.Valuer 接口
func (l TechTagList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *TechTagList) Scan(value interface{}) error {
	if value == nil {
		*l = make(TechTagList, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = make(TechTagList, 0)
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Names 返回标签名列表（保持存储顺序）
func (l TechTagList) Names() []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		out = append(out, t.Name)
	}
	return out
}
