package repository

import (
	"fmt"
	"time"
)

// DayRange 校验 YYYY-MM-DD 并返回该日在指定时区的起止时间（闭区间）
func DayRange(date string, loc *time.Location) (start, end time.Time, err error) {
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("解析日期失败: %w", err)
	}
	start = t
	end = t.Add(24*time.Hour - time.Second)
	return start, end, nil
}
