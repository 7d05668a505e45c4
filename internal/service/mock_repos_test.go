package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/realtime"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ════════════════════════════════════════════════════════════
// 内存版 Repository 实现，供 Service 层测试使用
// ════════════════════════════════════════════════════════════

var mockSeq int

func nextID(prefix string) string {
	mockSeq++
	return fmt.Sprintf("%s-%d", prefix, mockSeq)
}

func nextTime() time.Time {
	mockSeq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(mockSeq) * time.Second)
}

// ── users ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	user.CreatedAt = nextTime()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) ListByClassGroup(_ context.Context, group model.ClassGroup) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Group().Matches(group) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockUserRepo) DeleteWithDependents(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── invite_codes ──

type mockInviteCodeRepo struct {
	codes map[string]*model.InviteCode
}

func newMockInviteCodeRepo() *mockInviteCodeRepo {
	return &mockInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *mockInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	if code.InviteCodeID == "" {
		code.InviteCodeID = nextID("invite")
	}
	cp := *code
	m.codes[code.Code] = &cp
	return nil
}

func (m *mockInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	ic, ok := m.codes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ic
	return &cp, nil
}

func (m *mockInviteCodeRepo) ListByCreator(_ context.Context, userID string) ([]model.InviteCode, error) {
	var result []model.InviteCode
	for _, ic := range m.codes {
		if ic.CreatedBy == userID {
			result = append(result, *ic)
		}
	}
	return result, nil
}

// ── connections ──

type mockConnectionRepo struct {
	conns []model.Connection
	users *mockUserRepo
}

func newMockConnectionRepo(users *mockUserRepo) *mockConnectionRepo {
	return &mockConnectionRepo{users: users}
}

func (m *mockConnectionRepo) Upsert(_ context.Context, conn *model.Connection) error {
	for i := range m.conns {
		if m.conns[i].FollowerID == conn.FollowerID && m.conns[i].FollowingID == conn.FollowingID {
			m.conns[i].ConnectionTypes = conn.ConnectionTypes
			return nil
		}
	}
	conn.ConnectionID = nextID("conn")
	conn.CreatedAt = nextTime()
	m.conns = append(m.conns, *conn)
	return nil
}

func (m *mockConnectionRepo) GetByID(_ context.Context, id string) (*model.Connection, error) {
	for i := range m.conns {
		if m.conns[i].ConnectionID == id {
			cp := m.conns[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConnectionRepo) GetByPair(_ context.Context, followerID, followingID string) (*model.Connection, error) {
	for i := range m.conns {
		if m.conns[i].FollowerID == followerID && m.conns[i].FollowingID == followingID {
			cp := m.conns[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConnectionRepo) UpdateTypes(_ context.Context, id string, types []string) error {
	for i := range m.conns {
		if m.conns[i].ConnectionID == id {
			m.conns[i].ConnectionTypes = types
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockConnectionRepo) DeleteByPair(_ context.Context, followerID, followingID string) error {
	for i := range m.conns {
		if m.conns[i].FollowerID == followerID && m.conns[i].FollowingID == followingID {
			m.conns = append(m.conns[:i], m.conns[i+1:]...)
			return nil
		}
	}
	return nil // 删除不存在的行不报错，与 GORM 行为一致
}

func (m *mockConnectionRepo) ListByFollower(_ context.Context, followerID string) ([]model.Connection, error) {
	var result []model.Connection
	for i := range m.conns {
		if m.conns[i].FollowerID == followerID {
			cp := m.conns[i]
			if u, ok := m.users.users[cp.FollowingID]; ok {
				ucp := *u
				cp.Following = &ucp
			}
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockConnectionRepo) ListByFollowing(_ context.Context, followingID string) ([]model.Connection, error) {
	var result []model.Connection
	for i := range m.conns {
		if m.conns[i].FollowingID == followingID {
			cp := m.conns[i]
			if u, ok := m.users.users[cp.FollowerID]; ok {
				ucp := *u
				cp.Follower = &ucp
			}
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ── timetable_entries ──

type mockTimetableRepo struct {
	entries []model.TimetableEntry
}

func newMockTimetableRepo() *mockTimetableRepo { return &mockTimetableRepo{} }

func (m *mockTimetableRepo) ReplaceByUser(_ context.Context, userID string, entries []model.TimetableEntry) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	for i := range entries {
		if entries[i].EntryID == "" {
			entries[i].EntryID = nextID("entry")
		}
		m.entries = append(m.entries, entries[i])
	}
	return nil
}

func (m *mockTimetableRepo) ListByUser(_ context.Context, userID string) ([]model.TimetableEntry, error) {
	return m.listWhere(func(e model.TimetableEntry) bool { return e.UserID == userID }), nil
}

func (m *mockTimetableRepo) ListByUsers(_ context.Context, userIDs []string) ([]model.TimetableEntry, error) {
	set := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	return m.listWhere(func(e model.TimetableEntry) bool { return set[e.UserID] }), nil
}

func (m *mockTimetableRepo) ListByUsersAndDay(_ context.Context, userIDs []string, dayOfWeek int) ([]model.TimetableEntry, error) {
	set := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	return m.listWhere(func(e model.TimetableEntry) bool {
		return set[e.UserID] && e.DayOfWeek == dayOfWeek
	}), nil
}

func (m *mockTimetableRepo) GetByID(_ context.Context, id string) (*model.TimetableEntry, error) {
	for i := range m.entries {
		if m.entries[i].EntryID == id {
			cp := m.entries[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) listWhere(pred func(model.TimetableEntry) bool) []model.TimetableEntry {
	var result []model.TimetableEntry
	for _, e := range m.entries {
		if pred(e) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

// ── assignments ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	submissions map[string]*model.AssignmentSubmission // "assignmentID/userID"
	users       *mockUserRepo
}

func newMockAssignmentRepo(users *mockUserRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments: make(map[string]*model.Assignment),
		submissions: make(map[string]*model.AssignmentSubmission),
		users:       users,
	}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = nextID("assignment")
	}
	a.CreatedAt = nextTime()
	cp := *a
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	if u, ok := m.users.users[cp.CreatedBy]; ok {
		ucp := *u
		cp.Creator = &ucp
	}
	return &cp, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	if _, ok := m.assignments[a.AssignmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	cp.Creator = nil
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) ListByClassGroup(_ context.Context, group model.ClassGroup) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.ClassGroup.Matches(group) {
			cp := *a
			if u, ok := m.users.users[cp.CreatedBy]; ok {
				ucp := *u
				cp.Creator = &ucp
			}
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueAt.Before(result[j].DueAt) })
	return result, nil
}

func (m *mockAssignmentRepo) GetSubmission(_ context.Context, assignmentID, userID string) (*model.AssignmentSubmission, error) {
	s, ok := m.submissions[assignmentID+"/"+userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockAssignmentRepo) UpsertSubmission(_ context.Context, sub *model.AssignmentSubmission) error {
	cp := *sub
	m.submissions[sub.AssignmentID+"/"+sub.UserID] = &cp
	return nil
}

func (m *mockAssignmentRepo) ListSubmissionsByUser(_ context.Context, assignmentIDs []string, userID string) ([]model.AssignmentSubmission, error) {
	var result []model.AssignmentSubmission
	for _, id := range assignmentIDs {
		if s, ok := m.submissions[id+"/"+userID]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListSubmissionsByAssignments(_ context.Context, assignmentIDs []string) ([]model.AssignmentSubmission, error) {
	set := make(map[string]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		set[id] = true
	}
	var result []model.AssignmentSubmission
	for _, s := range m.submissions {
		if set[s.AssignmentID] {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── todays_classes ──

type mockTodaysClassRepo struct {
	classes map[string]*model.TodaysClass
}

func newMockTodaysClassRepo() *mockTodaysClassRepo {
	return &mockTodaysClassRepo{classes: make(map[string]*model.TodaysClass)}
}

func (m *mockTodaysClassRepo) Create(_ context.Context, tc *model.TodaysClass) error {
	if tc.TodaysClassID == "" {
		tc.TodaysClassID = nextID("tclass")
	}
	cp := *tc
	m.classes[tc.TodaysClassID] = &cp
	return nil
}

func (m *mockTodaysClassRepo) GetByID(_ context.Context, id string) (*model.TodaysClass, error) {
	tc, ok := m.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tc
	return &cp, nil
}

func (m *mockTodaysClassRepo) Update(_ context.Context, tc *model.TodaysClass) error {
	if _, ok := m.classes[tc.TodaysClassID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *tc
	m.classes[tc.TodaysClassID] = &cp
	return nil
}

func (m *mockTodaysClassRepo) Delete(_ context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockTodaysClassRepo) ListByGroupAndDate(_ context.Context, group model.ClassGroup, date time.Time) ([]model.TodaysClass, error) {
	var result []model.TodaysClass
	day := date.Format("2006-01-02")
	for _, tc := range m.classes {
		if tc.ClassGroup.Matches(group) && tc.ClassDate.Format("2006-01-02") == day {
			result = append(result, *tc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

// ── catchups ──

type mockCatchupRepo struct {
	catchups map[string]*model.Catchup
}

func newMockCatchupRepo() *mockCatchupRepo {
	return &mockCatchupRepo{catchups: make(map[string]*model.Catchup)}
}

func (m *mockCatchupRepo) Create(_ context.Context, c *model.Catchup) error {
	if c.CatchupID == "" {
		c.CatchupID = nextID("catchup")
	}
	c.CreatedAt = nextTime()
	cp := *c
	m.catchups[c.CatchupID] = &cp
	return nil
}

func (m *mockCatchupRepo) GetByID(_ context.Context, id string) (*model.Catchup, error) {
	c, ok := m.catchups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCatchupRepo) Update(_ context.Context, c *model.Catchup) error {
	if _, ok := m.catchups[c.CatchupID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	m.catchups[c.CatchupID] = &cp
	return nil
}

func (m *mockCatchupRepo) Delete(_ context.Context, id string) error {
	delete(m.catchups, id)
	return nil
}

func (m *mockCatchupRepo) ListActive(_ context.Context, now time.Time) ([]model.Catchup, error) {
	var result []model.Catchup
	for _, c := range m.catchups {
		if c.ExpiresAt == nil || c.ExpiresAt.After(now) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockCatchupRepo) ListByCreator(_ context.Context, userID string) ([]model.Catchup, error) {
	var result []model.Catchup
	for _, c := range m.catchups {
		if c.CreatedBy == userID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// ── notifications ──

type mockNotificationRepo struct {
	notifications []model.Notification
	prefs         map[string]*model.NotificationPreference
	tokens        map[string]*model.NotificationToken // "userID/token"
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{
		prefs:  make(map[string]*model.NotificationPreference),
		tokens: make(map[string]*model.NotificationToken),
	}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = nextID("notif")
	}
	n.CreatedAt = nextTime()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(ctx context.Context, ns []model.Notification) error {
	for i := range ns {
		if err := m.Create(ctx, &ns[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == id && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) GetPreferences(_ context.Context, userID string) (*model.NotificationPreference, error) {
	p, ok := m.prefs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockNotificationRepo) UpsertPreferences(_ context.Context, pref *model.NotificationPreference) error {
	cp := *pref
	m.prefs[pref.UserID] = &cp
	return nil
}

func (m *mockNotificationRepo) ListPreferencesByUsers(_ context.Context, userIDs []string) ([]model.NotificationPreference, error) {
	var result []model.NotificationPreference
	for _, id := range userIDs {
		if p, ok := m.prefs[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockNotificationRepo) CreateToken(_ context.Context, token *model.NotificationToken) error {
	if token.TokenID == "" {
		token.TokenID = nextID("token")
	}
	cp := *token
	m.tokens[token.UserID+"/"+token.Token] = &cp
	return nil
}

func (m *mockNotificationRepo) DeleteToken(_ context.Context, userID, token string) error {
	delete(m.tokens, userID+"/"+token)
	return nil
}

func (m *mockNotificationRepo) ListTokensByUser(_ context.Context, userID string) ([]model.NotificationToken, error) {
	var result []model.NotificationToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			result = append(result, *t)
		}
	}
	return result, nil
}

// ── schools / courses ──

type mockSchoolRepo struct {
	schools []model.School
}

func (m *mockSchoolRepo) List(_ context.Context) ([]model.School, error) {
	return m.schools, nil
}

func (m *mockSchoolRepo) GetByID(_ context.Context, id string) (*model.School, error) {
	for i := range m.schools {
		if m.schools[i].SchoolID == id {
			cp := m.schools[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockCourseRepo struct {
	courses []model.Course
}

func (m *mockCourseRepo) ListByDepartment(_ context.Context, departmentID string, level int, semester string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.DepartmentID == departmentID && c.Level == level && c.Semester == semester {
			result = append(result, c)
		}
	}
	return result, nil
}

// ── 测试环境组装 ──

type testEnv struct {
	repo          *repository.Repository
	users         *mockUserRepo
	connections   *mockConnectionRepo
	timetable     *mockTimetableRepo
	assignments   *mockAssignmentRepo
	todaysClasses *mockTodaysClassRepo
	catchups      *mockCatchupRepo
	notifications *mockNotificationRepo
	hub           *realtime.Hub
	logger        *zap.Logger
}

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	env := &testEnv{
		users:         users,
		connections:   newMockConnectionRepo(users),
		timetable:     newMockTimetableRepo(),
		assignments:   newMockAssignmentRepo(users),
		todaysClasses: newMockTodaysClassRepo(),
		catchups:      newMockCatchupRepo(),
		notifications: newMockNotificationRepo(),
		hub:           realtime.NewHub(zap.NewNop()),
		logger:        zap.NewNop(),
	}
	env.repo = &repository.Repository{
		User:         env.users,
		InviteCode:   newMockInviteCodeRepo(),
		Connection:   env.connections,
		Timetable:    env.timetable,
		Assignment:   env.assignments,
		TodaysClass:  env.todaysClasses,
		Catchup:      env.catchups,
		Notification: env.notifications,
		School:       &mockSchoolRepo{},
		Course:       &mockCourseRepo{},
	}
	return env
}

func (e *testEnv) addUser(name, role string, group model.ClassGroup) *model.User {
	u := &model.User{
		Email:      name + "@qitt.test",
		Name:       name,
		School:     group.School,
		Department: group.Department,
		Level:      group.Level,
		Semester:   group.Semester,
		Role:       role,
	}
	e.users.Create(context.Background(), u)
	return u
}

var testGroup = model.ClassGroup{
	School:     "Engineering",
	Department: "Computer Science",
	Level:      2,
	Semester:   "first",
}
