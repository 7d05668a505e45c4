package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableBadTime   = errors.New("invalid time format")
	ErrTimetableTimeOrder = errors.New("start time must be before end time")
)

// TimetableService 课表业务接口
type TimetableService interface {
	// Save 全量替换当前用户课表；entries 为空等价于清空
	Save(ctx context.Context, userID string, req *dto.SaveTimetableRequest) (*dto.TimetableResponse, error)
	// Get 聚合课表：自己的条目 + 所有授权 timetable 的连接对端条目
	Get(ctx context.Context, userID string) (*dto.TimetableResponse, error)
	// GetOwn 仅自己的课表（编辑视图）
	GetOwn(ctx context.Context, userID string) (*dto.TimetableResponse, error)
	// ExportICS 将聚合课表导出为 iCalendar（周重复事件）
	ExportICS(ctx context.Context, userID string) (string, error)
}

type timetableService struct {
	repo        *repository.Repository
	connections ConnectionService
	logger      *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, connections ConnectionService, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, connections: connections, logger: logger}
}

func (s *timetableService) Save(ctx context.Context, userID string, req *dto.SaveTimetableRequest) (*dto.TimetableResponse, error) {
	entries := make([]model.TimetableEntry, 0, len(req.Entries))
	for _, in := range req.Entries {
		startMin, err := ParseClock(in.StartTime)
		if err != nil {
			return nil, ErrTimetableBadTime
		}
		endMin, err := ParseClock(in.EndTime)
		if err != nil {
			return nil, ErrTimetableBadTime
		}
		if startMin >= endMin {
			return nil, ErrTimetableTimeOrder
		}
		entries = append(entries, model.TimetableEntry{
			UserID:    userID,
			DayOfWeek: in.DayOfWeek,
			StartTime: FormatClock(startMin),
			EndTime:   FormatClock(endMin),
			Course:    in.Course,
			Venue:     in.Venue,
		})
	}

	if err := s.repo.Timetable.ReplaceByUser(ctx, userID, entries); err != nil {
		s.logger.Error("保存课表失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表已保存",
		zap.String("user_id", userID),
		zap.Int("entries", len(entries)),
	)

	return s.GetOwn(ctx, userID)
}

func (s *timetableService) GetOwn(ctx context.Context, userID string) (*dto.TimetableResponse, error) {
	entries, err := s.repo.Timetable.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	return s.buildResponse(entries, userID, nil), nil
}

func (s *timetableService) Get(ctx context.Context, userID string) (*dto.TimetableResponse, error) {
	entries, owners, err := s.aggregateEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(entries, userID, owners), nil
}

// aggregateEntries 收集自己 + 授权对端的全部课表条目
// 返回的 owners 用于标注非本人条目的归属
func (s *timetableService) aggregateEntries(ctx context.Context, userID string) ([]model.TimetableEntry, map[string]string, error) {
	peers, err := s.connections.GrantingPeers(ctx, userID, model.ConnectionTypeTimetable)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(peers)+1)
	ids = append(ids, userID)
	owners := make(map[string]string, len(peers))
	for _, p := range peers {
		ids = append(ids, p.UserID)
		owners[p.UserID] = p.Name
	}

	entries, err := s.repo.Timetable.ListByUsers(ctx, ids)
	if err != nil {
		s.logger.Error("聚合课表失败", zap.Error(err))
		return nil, nil, err
	}
	return entries, owners, nil
}

// buildResponse 按星期分组并按起始分钟排序
// 同一时刻本人条目排在对端条目之前
func (s *timetableService) buildResponse(entries []model.TimetableEntry, viewerID string, owners map[string]string) *dto.TimetableResponse {
	resp := &dto.TimetableResponse{Days: make(map[int][]dto.TimetableEntryResponse)}

	for _, e := range entries {
		item := dto.TimetableEntryResponse{
			ID:        e.EntryID,
			DayOfWeek: e.DayOfWeek,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Course:    StripLecturerSuffix(e.Course),
			Venue:     e.Venue,
			IsOwner:   e.UserID == viewerID,
			OwnerID:   e.UserID,
		}
		if !item.IsOwner {
			item.OwnerName = owners[e.UserID]
		}
		resp.Days[e.DayOfWeek] = append(resp.Days[e.DayOfWeek], item)
	}

	for day := range resp.Days {
		items := resp.Days[day]
		sort.SliceStable(items, func(i, j int) bool {
			a, _ := ParseClock(items[i].StartTime)
			b, _ := ParseClock(items[j].StartTime)
			if a != b {
				return a < b
			}
			return items[i].IsOwner && !items[j].IsOwner
		})
	}
	return resp
}

// ── ICS 导出 ──

func (s *timetableService) ExportICS(ctx context.Context, userID string) (string, error) {
	entries, _, err := s.aggregateEntries(ctx, userID)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Qitt//Timetable//EN")

	now := time.Now()
	for _, e := range entries {
		startMin, err := ParseClock(e.StartTime)
		if err != nil {
			continue
		}
		endMin, err := ParseClock(e.EndTime)
		if err != nil {
			continue
		}

		first := nextWeekday(now, e.DayOfWeek)
		start := time.Date(first.Year(), first.Month(), first.Day(), startMin/60, startMin%60, 0, 0, now.Location())
		end := time.Date(first.Year(), first.Month(), first.Day(), endMin/60, endMin%60, 0, 0, now.Location())

		event := cal.AddEvent(fmt.Sprintf("%s@qitt", e.EntryID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(StripLecturerSuffix(e.Course))
		if e.Venue != "" {
			event.SetLocation(e.Venue)
		}
		event.AddRrule("FREQ=WEEKLY")
	}

	return cal.Serialize(), nil
}

// nextWeekday 返回 from 当天或之后最近的指定星期（1=周一 … 7=周日）
func nextWeekday(from time.Time, dayOfWeek int) time.Time {
	// time.Weekday 周日为 0，转换到周一为 1 的约定
	current := int(from.Weekday())
	if current == 0 {
		current = 7
	}
	delta := (dayOfWeek - current + 7) % 7
	return from.AddDate(0, 0, delta)
}
