package service

import (
	"fmt"
	"time"
)

// 所有按天分组的计算（周窗口、连续天数、技能分布）统一经由本文件取日期键，
// 避免各组件对"今天是哪天"产生分歧。

const dateKeyLayout = "2006-01-02"

// DateKey 返回时间在统计时区下的日期键 YYYY-MM-DD
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateKeyLayout)
}

// ParseDateKey 按统计时区解析日期键
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("解析日期键失败: %w", err)
	}
	return t, nil
}

// StartOfDay 返回统计时区下当日零点
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// WeekMonday 返回本周周一零点（周一为一周起点；周日时为 6 天前的周一）
func WeekMonday(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	offset := int(day.Weekday()) - 1 // Monday=1 ... Saturday=6
	if day.Weekday() == time.Sunday {
		offset = 6
	}
	return day.AddDate(0, 0, -offset)
}

var dayNamesEn = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayOfWeekEn 英文三字母曜日（Sun..Sat）
func DayOfWeekEn(t time.Time) string {
	return dayNamesEn[int(t.Weekday())]
}

var dayNamesJa = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// DayOfWeekJa 日文短曜日（日、月、火...）
func DayOfWeekJa(t time.Time) string {
	return dayNamesJa[int(t.Weekday())]
}

var dayNamesJaFull = [...]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}

// DayOfWeekJaFull 日文完整曜日（日曜日、月曜日...）
func DayOfWeekJaFull(t time.Time) string {
	return dayNamesJaFull[int(t.Weekday())]
}

// WeekLabel 生成周范围标签，如 "12月16日〜12月22日"
func WeekLabel(start, end time.Time) string {
	return fmt.Sprintf("%d月%d日〜%d月%d日",
		int(start.Month()), start.Day(), int(end.Month()), end.Day())
}
