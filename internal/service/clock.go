package service

import (
	"fmt"
	"strconv"
	"strings"
)

// ── 时间工具 ──
//
// 课表时间一律以补零的 HH:MM 存储，比较与排序一律按
// 分钟数进行，避免字符串排序在未补零时产生错误顺序
// （如 "9:00" 会排在 "10:00" 之后）。

// ParseClock 解析时间字符串为零点起的分钟数
// 兼容 "08:00"、"8:00"、"8am"、"8.30pm"、"8:30 PM" 等输入
func ParseClock(s string) (int, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("时间字符串为空")
	}

	meridiem := ""
	switch {
	case strings.HasSuffix(raw, "am"):
		meridiem = "am"
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "am"))
	case strings.HasSuffix(raw, "pm"):
		meridiem = "pm"
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "pm"))
	}

	raw = strings.ReplaceAll(raw, ".", ":")
	hourPart, minutePart := raw, "0"
	if idx := strings.Index(raw, ":"); idx >= 0 {
		hourPart, minutePart = raw[:idx], raw[idx+1:]
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("无效的小时 %q", s)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, fmt.Errorf("无效的分钟 %q", s)
	}

	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("时间超出范围 %q", s)
	}

	return hour*60 + minute, nil
}

// FormatClock 将分钟数格式化为补零的 HH:MM
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock 解析并重新格式化为规范形式
func NormalizeClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// StripLecturerSuffix 去除课程名中的 " - 讲师" 后缀
// 课程展示仅保留 " - " 之前的首段
func StripLecturerSuffix(course string) string {
	if idx := strings.Index(course, " - "); idx >= 0 {
		return course[:idx]
	}
	return course
}
