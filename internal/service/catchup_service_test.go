package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

func newCatchupTestService(env *testEnv) CatchupService {
	notifier := NewNotificationService(env.repo, env.hub, env.logger)
	return NewCatchupService(env.repo, notifier, env.logger)
}

func (e *testEnv) addAdmin(name string) *model.User {
	return e.addUser(name, model.RoleAdmin, model.ClassGroup{
		School: "Admin", Department: "Admin", Level: 1, Semester: "first",
	})
}

func TestCreateCatchupRequiresPublisher(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := newCatchupTestService(env)

	_, err := svc.Create(context.Background(), alice.UserID, &dto.CreateCatchupRequest{
		Title:   "Exam timetable out",
		Summary: "Check the portal",
	})
	if !errors.Is(err, ErrCatchupNotAllowed) {
		t.Fatalf("普通学生发公告期望 ErrCatchupNotAllowed, 实际 %v", err)
	}
}

func TestGlobalCatchupVisibleToEveryone(t *testing.T) {
	env := newTestEnv()
	admin := env.addAdmin("Admin")
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := newCatchupTestService(env)

	ctx := context.Background()
	if _, err := svc.Create(ctx, admin.UserID, &dto.CreateCatchupRequest{
		Title:   "Holiday notice",
		Summary: "School closed on Friday",
		Targets: dto.CatchupTargetsInput{Global: true},
	}); err != nil {
		t.Fatalf("Create 报错: %v", err)
	}

	list, err := svc.ListForUser(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("ListForUser 报错: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Holiday notice" {
		t.Errorf("全局公告应对所有人可见: %+v", list)
	}
}

func TestTargetedCatchupFiltersByAudience(t *testing.T) {
	env := newTestEnv()
	admin := env.addAdmin("Admin")
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	outsider := env.addUser("Outsider", model.RoleStudent, model.ClassGroup{
		School: "Science", Department: "Physics", Level: 3, Semester: "second",
	})
	svc := newCatchupTestService(env)

	ctx := context.Background()
	if _, err := svc.Create(ctx, admin.UserID, &dto.CreateCatchupRequest{
		Title:   "CS dept meeting",
		Summary: "All CS students attend",
		Targets: dto.CatchupTargetsInput{Departments: []string{"Computer Science"}},
	}); err != nil {
		t.Fatalf("Create 报错: %v", err)
	}

	aliceList, _ := svc.ListForUser(ctx, alice.UserID)
	if len(aliceList) != 1 {
		t.Errorf("CS 学生应可见, 实际 %d 条", len(aliceList))
	}
	outsiderList, _ := svc.ListForUser(ctx, outsider.UserID)
	if len(outsiderList) != 0 {
		t.Errorf("非 CS 学生不应可见, 实际 %d 条", len(outsiderList))
	}
}

func TestRepCatchupForcedToOwnClass(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	outsider := env.addUser("Outsider", model.RoleStudent, model.ClassGroup{
		School: "Science", Department: "Physics", Level: 3, Semester: "second",
	})
	svc := newCatchupTestService(env)

	ctx := context.Background()
	// 课代表声称 global，实际应被收窄到本班
	if _, err := svc.Create(ctx, rep.UserID, &dto.CreateCatchupRequest{
		Title:   "Class test moved",
		Summary: "Now on Thursday",
		Targets: dto.CatchupTargetsInput{Global: true},
	}); err != nil {
		t.Fatalf("Create 报错: %v", err)
	}

	aliceList, _ := svc.ListForUser(ctx, alice.UserID)
	if len(aliceList) != 1 {
		t.Errorf("同班同学应可见, 实际 %d 条", len(aliceList))
	}
	outsiderList, _ := svc.ListForUser(ctx, outsider.UserID)
	if len(outsiderList) != 0 {
		t.Errorf("别班学生不应可见, 实际 %d 条", len(outsiderList))
	}

	// 班级定向公告应附带通知
	count, _ := env.notifications.CountUnread(ctx, alice.UserID)
	if count != 1 {
		t.Errorf("同班同学期望 1 条通知, 实际 %d", count)
	}
}

func TestExpiredCatchupHidden(t *testing.T) {
	env := newTestEnv()
	admin := env.addAdmin("Admin")
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := newCatchupTestService(env)

	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	if _, err := svc.Create(ctx, admin.UserID, &dto.CreateCatchupRequest{
		Title:     "Old news",
		Summary:   "Already over",
		Targets:   dto.CatchupTargetsInput{Global: true},
		ExpiresAt: &past,
	}); err != nil {
		t.Fatalf("Create 报错: %v", err)
	}

	list, _ := svc.ListForUser(ctx, alice.UserID)
	if len(list) != 0 {
		t.Errorf("过期公告不应出现在用户列表, 实际 %d 条", len(list))
	}

	// 创建者的管理视图仍可见
	mine, _ := svc.ListMine(ctx, admin.UserID)
	if len(mine) != 1 {
		t.Errorf("管理视图应含过期公告, 实际 %d 条", len(mine))
	}
}

func TestCatchupCTAAndUpdate(t *testing.T) {
	env := newTestEnv()
	admin := env.addAdmin("Admin")
	svc := newCatchupTestService(env)

	ctx := context.Background()
	label, url := "Register", "https://example.com/register"
	created, err := svc.Create(ctx, admin.UserID, &dto.CreateCatchupRequest{
		Title:    "Career fair",
		Summary:  "Sign up now",
		CTALabel: &label,
		CTAURL:   &url,
		Targets:  dto.CatchupTargetsInput{Global: true},
	})
	if err != nil {
		t.Fatalf("Create 报错: %v", err)
	}
	if created.CTA == nil || created.CTA.Label != "Register" {
		t.Errorf("CTA 应成对返回: %+v", created.CTA)
	}

	newTitle := "Career fair 2026"
	updated, err := svc.Update(ctx, created.ID, admin.UserID, &dto.UpdateCatchupRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update 报错: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("标题未更新: %s", updated.Title)
	}

	if err := svc.Delete(ctx, created.ID, admin.UserID); err != nil {
		t.Fatalf("Delete 报错: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID, admin.UserID); !errors.Is(err, ErrCatchupNotFound) {
		t.Errorf("删除后期望 ErrCatchupNotFound, 实际 %v", err)
	}
}

func TestGetCatchupScopedToAudience(t *testing.T) {
	env := newTestEnv()
	admin := env.addAdmin("Admin")
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	outsider := env.addUser("Outsider", model.RoleStudent, model.ClassGroup{
		School: "Science", Department: "Physics", Level: 3, Semester: "second",
	})
	svc := newCatchupTestService(env)

	ctx := context.Background()
	created, err := svc.Create(ctx, admin.UserID, &dto.CreateCatchupRequest{
		Title:   "CS dept meeting",
		Summary: "All CS students attend",
		Targets: dto.CatchupTargetsInput{Departments: []string{"Computer Science"}},
	})
	if err != nil {
		t.Fatalf("Create 报错: %v", err)
	}

	if _, err := svc.Get(ctx, created.ID, alice.UserID); err != nil {
		t.Fatalf("目标受众应可见: %v", err)
	}
	// 范围之外的用户拿到 ID 也不可见，创建者始终可见
	if _, err := svc.Get(ctx, created.ID, outsider.UserID); !errors.Is(err, ErrCatchupNotFound) {
		t.Errorf("范围外用户期望 ErrCatchupNotFound, 实际 %v", err)
	}
	if _, err := svc.Get(ctx, created.ID, admin.UserID); err != nil {
		t.Fatalf("创建者应可见: %v", err)
	}
}
