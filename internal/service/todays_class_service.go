package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ── 当日变更模块业务错误 ──

var (
	ErrTodaysClassNotFound   = errors.New("class update not found")
	ErrTodaysClassNotCreator = errors.New("only the creator can modify this update")
	ErrTodaysClassNotRep     = errors.New("only course reps can manage class updates")
	ErrTodaysClassBadDate    = errors.New("invalid date format")
	ErrTodaysClassBadTime    = errors.New("invalid time format")
)

// TodaysClassService 当日课程变更业务接口
// 变更是叠加在常规课表之上的按日期例外：关联 entry_id 时覆盖对应
// 常规条目，否则作为临时加课；删除变更即恢复常规课表
type TodaysClassService interface {
	Create(ctx context.Context, userID string, req *dto.CreateTodaysClassRequest) (*dto.TodaysClassResponse, error)
	Update(ctx context.Context, id, userID string, req *dto.UpdateTodaysClassRequest) (*dto.TodaysClassResponse, error)
	Delete(ctx context.Context, id, userID string) error
	// ListForDate 当前用户班级指定日期的全部变更（管理视图）
	ListForDate(ctx context.Context, userID, date string) ([]dto.TodaysClassResponse, error)
	// GetMergedSchedule 合并视图：常规课表 + 当日变更，
	// 含所有授权 today_classes 的连接对端
	GetMergedSchedule(ctx context.Context, userID, date string) (*dto.TodayScheduleResponse, error)
}

type todaysClassService struct {
	repo        *repository.Repository
	connections ConnectionService
	notifier    NotificationService
	logger      *zap.Logger
}

// NewTodaysClassService 创建 TodaysClassService 实例
func NewTodaysClassService(repo *repository.Repository, connections ConnectionService, notifier NotificationService, logger *zap.Logger) TodaysClassService {
	return &todaysClassService{repo: repo, connections: connections, notifier: notifier, logger: logger}
}

func (s *todaysClassService) Create(ctx context.Context, userID string, req *dto.CreateTodaysClassRequest) (*dto.TodaysClassResponse, error) {
	user, err := s.requireRep(ctx, userID)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.ClassDate)
	if err != nil {
		return nil, ErrTodaysClassBadDate
	}
	start, err := NormalizeClock(req.StartTime)
	if err != nil {
		return nil, ErrTodaysClassBadTime
	}
	end, err := NormalizeClock(req.EndTime)
	if err != nil {
		return nil, ErrTodaysClassBadTime
	}

	tc := model.TodaysClass{
		ClassGroup: user.Group(),
		ClassDate:  date,
		EntryID:    req.EntryID,
		StartTime:  start,
		EndTime:    end,
		Course:     req.Course,
		Venue:      req.Venue,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}
	if err := s.repo.TodaysClass.Create(ctx, &tc); err != nil {
		s.logger.Error("创建当日变更失败", zap.Error(err))
		return nil, err
	}

	relatedType := model.NotificationTypeTodaysClass
	if nerr := s.notifier.NotifyGroup(ctx, user.Group(), userID, model.NotificationTypeTodaysClass,
		"Class update: "+tc.Course,
		tc.Course+" on "+req.ClassDate+" at "+tc.StartTime,
		&relatedType, &tc.TodaysClassID); nerr != nil {
		s.logger.Warn("变更通知发送失败", zap.Error(nerr))
	}

	resp := toTodaysClassResponse(&tc)
	return &resp, nil
}

func (s *todaysClassService) Update(ctx context.Context, id, userID string, req *dto.UpdateTodaysClassRequest) (*dto.TodaysClassResponse, error) {
	user, err := s.requireRep(ctx, userID)
	if err != nil {
		return nil, err
	}

	tc, err := s.repo.TodaysClass.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodaysClassNotFound
		}
		return nil, err
	}
	if tc.CreatedBy != userID && user.Role != model.RoleAdmin {
		return nil, ErrTodaysClassNotCreator
	}

	if req.StartTime != nil {
		start, err := NormalizeClock(*req.StartTime)
		if err != nil {
			return nil, ErrTodaysClassBadTime
		}
		tc.StartTime = start
	}
	if req.EndTime != nil {
		end, err := NormalizeClock(*req.EndTime)
		if err != nil {
			return nil, ErrTodaysClassBadTime
		}
		tc.EndTime = end
	}
	if req.Course != nil {
		tc.Course = *req.Course
	}
	if req.Venue != nil {
		tc.Venue = *req.Venue
	}
	if req.IsCancelled != nil {
		tc.IsCancelled = *req.IsCancelled
	}
	if req.Notes != nil {
		tc.Notes = *req.Notes
	}

	// 后写覆盖：不做乐观锁，课代表通常只有一人
	if err := s.repo.TodaysClass.Update(ctx, tc); err != nil {
		s.logger.Error("更新当日变更失败", zap.Error(err))
		return nil, err
	}

	if req.IsCancelled != nil && *req.IsCancelled {
		relatedType := model.NotificationTypeTodaysClass
		if nerr := s.notifier.NotifyGroup(ctx, tc.ClassGroup, userID, model.NotificationTypeTodaysClass,
			"Class cancelled: "+tc.Course,
			tc.Course+" on "+tc.ClassDate.Format("2006-01-02")+" has been cancelled",
			&relatedType, &tc.TodaysClassID); nerr != nil {
			s.logger.Warn("停课通知发送失败", zap.Error(nerr))
		}
	}

	resp := toTodaysClassResponse(tc)
	return &resp, nil
}

func (s *todaysClassService) Delete(ctx context.Context, id, userID string) error {
	user, err := s.requireRep(ctx, userID)
	if err != nil {
		return err
	}

	tc, err := s.repo.TodaysClass.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTodaysClassNotFound
		}
		return err
	}
	if tc.CreatedBy != userID && user.Role != model.RoleAdmin {
		return ErrTodaysClassNotCreator
	}

	if err := s.repo.TodaysClass.Delete(ctx, id); err != nil {
		s.logger.Error("删除当日变更失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *todaysClassService) ListForDate(ctx context.Context, userID, date string) ([]dto.TodaysClassResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	day, err := parseDateOrToday(date)
	if err != nil {
		return nil, err
	}

	classes, err := s.repo.TodaysClass.ListByGroupAndDate(ctx, user.Group(), day)
	if err != nil {
		s.logger.Error("查询当日变更失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TodaysClassResponse, 0, len(classes))
	for i := range classes {
		result = append(result, toTodaysClassResponse(&classes[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// GetMergedSchedule — 当日合并视图
// ════════════════════════════════════════════════════════════
//
// 对每个来源用户（查看者本人 + 授权 today_classes 的对端）：
//   1. 取其当日的常规课表条目
//   2. 叠加其班级当日的变更：entry_id 匹配的覆盖原条目并按字段
//      计算 changed 标记，并标注来源归属
//
// 变更按班级只取一次：同班来源共享同一批变更，逐来源取会导致
// 临时加课重复出现。没有匹配到任何来源常规条目的变更（无 entry_id，
// 或 entry_id 指向查看者看不到的条目）统一作为临时加课追加，
// 归属记为变更的创建者。全部条目最终按起始分钟排序

func (s *todaysClassService) GetMergedSchedule(ctx context.Context, userID, date string) (*dto.TodayScheduleResponse, error) {
	day, err := parseDateOrToday(date)
	if err != nil {
		return nil, err
	}
	dayOfWeek := int(day.Weekday())
	if dayOfWeek == 0 {
		dayOfWeek = 7
	}

	viewer, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	peers, err := s.connections.GrantingPeers(ctx, userID, model.ConnectionTypeTodayClasses)
	if err != nil {
		return nil, err
	}

	sources := make([]model.User, 0, len(peers)+1)
	sources = append(sources, *viewer)
	sources = append(sources, peers...)

	// 变更按班级取一次，并记录班级首次出现的顺序保证输出确定
	overridesByGroup := make(map[string][]model.TodaysClass, len(sources))
	var groupOrder []string
	for _, src := range sources {
		key := src.GroupKey()
		if _, ok := overridesByGroup[key]; ok {
			continue
		}
		overrides, err := s.repo.TodaysClass.ListByGroupAndDate(ctx, src.Group(), day)
		if err != nil {
			s.logger.Error("查询当日变更失败", zap.Error(err))
			return nil, err
		}
		overridesByGroup[key] = overrides
		groupOrder = append(groupOrder, key)
	}

	matched := make(map[string]bool)
	var merged []dto.MergedClassResponse
	for _, src := range sources {
		entries, err := s.repo.Timetable.ListByUsersAndDay(ctx, []string{src.UserID}, dayOfWeek)
		if err != nil {
			s.logger.Error("查询当日课表失败", zap.Error(err))
			return nil, err
		}

		items := overlayDay(entries, overridesByGroup[src.GroupKey()], matched)
		for i := range items {
			items[i].OwnerID = src.UserID
			items[i].IsOwner = src.UserID == userID
			if !items[i].IsOwner {
				items[i].OwnerName = src.Name
			}
		}
		merged = append(merged, items...)
	}

	// 所有来源都没有消费掉的变更作为临时加课追加
	creatorNames := sourceNames(sources)
	for _, key := range groupOrder {
		for i := range overridesByGroup[key] {
			ov := &overridesByGroup[key][i]
			if matched[ov.TodaysClassID] {
				continue
			}
			item := toAdHocClass(ov)
			item.OwnerID = ov.CreatedBy
			item.IsOwner = ov.CreatedBy == userID
			if !item.IsOwner {
				item.OwnerName = s.creatorName(ctx, ov.CreatedBy, creatorNames)
			}
			merged = append(merged, item)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, _ := ParseClock(merged[i].StartTime)
		b, _ := ParseClock(merged[j].StartTime)
		if a != b {
			return a < b
		}
		return merged[i].IsOwner && !merged[j].IsOwner
	})

	return &dto.TodayScheduleResponse{
		Date:    day.Format("2006-01-02"),
		Classes: merged,
	}, nil
}

// overlayDay 将 entry_id 匹配的变更叠加到某来源当日的常规条目上。
// 匹配成功的变更记入 matched，供调用方在全部来源处理完后
// 把剩余变更作为临时加课追加
func overlayDay(entries []model.TimetableEntry, overrides []model.TodaysClass, matched map[string]bool) []dto.MergedClassResponse {
	overrideByEntry := make(map[string]*model.TodaysClass, len(overrides))
	for i := range overrides {
		if overrides[i].EntryID != nil {
			overrideByEntry[*overrides[i].EntryID] = &overrides[i]
		}
	}

	result := make([]dto.MergedClassResponse, 0, len(entries))
	for _, e := range entries {
		item := dto.MergedClassResponse{
			EntryID:   e.EntryID,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Course:    StripLecturerSuffix(e.Course),
			Venue:     e.Venue,
		}
		if ov, ok := overrideByEntry[e.EntryID]; ok {
			matched[ov.TodaysClassID] = true
			item.OverrideID = ov.TodaysClassID
			item.StartTime = ov.StartTime
			item.EndTime = ov.EndTime
			item.Course = StripLecturerSuffix(ov.Course)
			item.Venue = ov.Venue
			item.IsCancelled = ov.IsCancelled
			item.Notes = ov.Notes

			item.TimeChanged = ov.StartTime != e.StartTime || ov.EndTime != e.EndTime
			item.LocationChanged = ov.Venue != e.Venue
			item.CourseChanged = StripLecturerSuffix(ov.Course) != StripLecturerSuffix(e.Course)
			if item.TimeChanged {
				item.OriginalStart = e.StartTime
				item.OriginalEnd = e.EndTime
			}
			if item.LocationChanged {
				item.OriginalVenue = e.Venue
			}
			if item.CourseChanged {
				item.OriginalCourse = StripLecturerSuffix(e.Course)
			}
		}
		result = append(result, item)
	}
	return result
}

// toAdHocClass 把未匹配常规条目的变更转换为临时加课条目
func toAdHocClass(ov *model.TodaysClass) dto.MergedClassResponse {
	return dto.MergedClassResponse{
		OverrideID:  ov.TodaysClassID,
		StartTime:   ov.StartTime,
		EndTime:     ov.EndTime,
		Course:      StripLecturerSuffix(ov.Course),
		Venue:       ov.Venue,
		IsCancelled: ov.IsCancelled,
		IsAdHoc:     true,
		Notes:       ov.Notes,
	}
}

func sourceNames(sources []model.User) map[string]string {
	names := make(map[string]string, len(sources))
	for _, src := range sources {
		names[src.UserID] = src.Name
	}
	return names
}

// creatorName 解析变更创建者的显示名；创建者不在来源中时回查用户表，
// 查不到（如已注销）则留空
func (s *todaysClassService) creatorName(ctx context.Context, creatorID string, known map[string]string) string {
	if name, ok := known[creatorID]; ok {
		return name
	}
	creator, err := s.repo.User.GetByID(ctx, creatorID)
	if err != nil {
		return ""
	}
	known[creatorID] = creator.Name
	return creator.Name
}

// ── 私有辅助方法 ──

func (s *todaysClassService) requireRep(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsCourseRep() && user.Role != model.RoleAdmin {
		return nil, ErrTodaysClassNotRep
	}
	return user, nil
}

func parseDateOrToday(date string) (time.Time, error) {
	if date == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, ErrTodaysClassBadDate
	}
	return day, nil
}

// ── 响应转换器 ──

func toTodaysClassResponse(tc *model.TodaysClass) dto.TodaysClassResponse {
	return dto.TodaysClassResponse{
		ID:          tc.TodaysClassID,
		ClassDate:   tc.ClassDate.Format("2006-01-02"),
		EntryID:     tc.EntryID,
		StartTime:   tc.StartTime,
		EndTime:     tc.EndTime,
		Course:      tc.Course,
		Venue:       tc.Venue,
		IsCancelled: tc.IsCancelled,
		Notes:       tc.Notes,
	}
}
