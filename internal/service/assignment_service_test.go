package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

func newAssignmentTestService(env *testEnv) AssignmentService {
	notifier := NewNotificationService(env.repo, env.hub, env.logger)
	return NewAssignmentService(env.repo, notifier, env.logger)
}

func TestCreateAssignmentRequiresRep(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := newAssignmentTestService(env)

	_, err := svc.Create(context.Background(), alice.UserID, &dto.CreateAssignmentRequest{
		Course: "MTH 101",
		Title:  "Problem set 1",
		DueAt:  time.Now().Add(48 * time.Hour),
	})
	if !errors.Is(err, ErrAssignmentNotRep) {
		t.Fatalf("普通学生创建作业期望 ErrAssignmentNotRep, 实际 %v", err)
	}
}

func TestCreateAssignmentFansOutToClass(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	outsider := env.addUser("Outsider", model.RoleStudent, model.ClassGroup{
		School: "Science", Department: "Physics", Level: 3, Semester: "second",
	})
	svc := newAssignmentTestService(env)

	ctx := context.Background()
	resp, err := svc.Create(ctx, rep.UserID, &dto.CreateAssignmentRequest{
		Course: "MTH 101",
		Title:  "Problem set 1",
		DueAt:  time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create 报错: %v", err)
	}
	if resp.CreatorName != "Rep" {
		t.Errorf("创建者名应回填, 实际 %s", resp.CreatorName)
	}

	// 同班同学收到通知；别班与发起者不收
	aliceCount, _ := env.notifications.CountUnread(ctx, alice.UserID)
	if aliceCount != 1 {
		t.Errorf("Alice 期望 1 条通知, 实际 %d", aliceCount)
	}
	outsiderCount, _ := env.notifications.CountUnread(ctx, outsider.UserID)
	if outsiderCount != 0 {
		t.Errorf("别班学生不应收到通知, 实际 %d", outsiderCount)
	}
	repCount, _ := env.notifications.CountUnread(ctx, rep.UserID)
	if repCount != 0 {
		t.Errorf("发起者不应收到通知, 实际 %d", repCount)
	}
}

func TestListScopedToClassGroup(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	otherGroup := model.ClassGroup{School: "Science", Department: "Physics", Level: 3, Semester: "second"}
	otherRep := env.addUser("OtherRep", model.RoleCourseRep, otherGroup)
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := newAssignmentTestService(env)

	ctx := context.Background()
	svc.Create(ctx, rep.UserID, &dto.CreateAssignmentRequest{
		Course: "MTH 101", Title: "Ours", DueAt: time.Now().Add(24 * time.Hour),
	})
	svc.Create(ctx, otherRep.UserID, &dto.CreateAssignmentRequest{
		Course: "PHY 301", Title: "Theirs", DueAt: time.Now().Add(24 * time.Hour),
	})

	list, err := svc.List(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("List 报错: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Ours" {
		t.Errorf("作业应按班级隔离: %+v", list)
	}
}

func TestToggleSubmissionPerStudent(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	bob := env.addUser("Bob", model.RoleStudent, testGroup)
	svc := newAssignmentTestService(env)

	ctx := context.Background()
	created, _ := svc.Create(ctx, rep.UserID, &dto.CreateAssignmentRequest{
		Course: "MTH 101", Title: "Problem set 1", DueAt: time.Now().Add(24 * time.Hour),
	})

	sub, err := svc.ToggleSubmission(ctx, created.ID, alice.UserID, &dto.ToggleSubmissionRequest{Submitted: true})
	if err != nil {
		t.Fatalf("ToggleSubmission 报错: %v", err)
	}
	if !sub.Submitted || sub.SubmittedAt == nil {
		t.Errorf("标记提交应记录时间: %+v", sub)
	}

	// Alice 的标记不影响 Bob
	aliceList, _ := svc.List(ctx, alice.UserID)
	bobList, _ := svc.List(ctx, bob.UserID)
	if !aliceList[0].Submitted {
		t.Error("Alice 视角应为已提交")
	}
	if bobList[0].Submitted {
		t.Error("Bob 视角应为未提交")
	}

	// 取消标记
	sub, err = svc.ToggleSubmission(ctx, created.ID, alice.UserID, &dto.ToggleSubmissionRequest{Submitted: false})
	if err != nil {
		t.Fatalf("取消标记报错: %v", err)
	}
	if sub.Submitted {
		t.Error("取消后应为未提交")
	}

	_, err = svc.ToggleSubmission(ctx, "no-such", alice.UserID, &dto.ToggleSubmissionRequest{Submitted: true})
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("不存在的作业期望 ErrAssignmentNotFound, 实际 %v", err)
	}
}

func TestUpdateAssignmentOnlyByCreator(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	other := env.addUser("OtherRep", model.RoleCourseRep, testGroup)
	svc := newAssignmentTestService(env)

	ctx := context.Background()
	created, _ := svc.Create(ctx, rep.UserID, &dto.CreateAssignmentRequest{
		Course: "MTH 101", Title: "Problem set 1", DueAt: time.Now().Add(24 * time.Hour),
	})

	newTitle := "Problem set 1 (revised)"
	_, err := svc.Update(ctx, created.ID, other.UserID, &dto.UpdateAssignmentRequest{Title: &newTitle})
	if !errors.Is(err, ErrAssignmentNotCreator) {
		t.Fatalf("非创建者修改期望 ErrAssignmentNotCreator, 实际 %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, rep.UserID, &dto.UpdateAssignmentRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update 报错: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("标题未更新: %s", updated.Title)
	}
}

func TestExportSubmissionMatrix(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := newAssignmentTestService(env)

	ctx := context.Background()
	created, _ := svc.Create(ctx, rep.UserID, &dto.CreateAssignmentRequest{
		Course: "MTH 101", Title: "Problem set 1", DueAt: time.Now().Add(24 * time.Hour),
	})
	svc.ToggleSubmission(ctx, created.ID, alice.UserID, &dto.ToggleSubmissionRequest{Submitted: true})

	out, err := svc.ExportSubmissionMatrix(ctx, rep.UserID)
	if err != nil {
		t.Fatalf("ExportSubmissionMatrix 报错: %v", err)
	}
	// xlsx 本质是 zip，校验文件头
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Error("导出内容应为 xlsx 格式")
	}

	_, err = svc.ExportSubmissionMatrix(ctx, alice.UserID)
	if !errors.Is(err, ErrAssignmentNotRep) {
		t.Errorf("普通学生导出期望 ErrAssignmentNotRep, 实际 %v", err)
	}
}

func TestGetAssignmentScopedToClassGroup(t *testing.T) {
	env := newTestEnv()
	rep := env.addUser("Rep", model.RoleCourseRep, testGroup)
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	outsider := env.addUser("Outsider", model.RoleStudent, model.ClassGroup{
		School: "Science", Department: "Physics", Level: 3, Semester: "second",
	})
	svc := newAssignmentTestService(env)

	ctx := context.Background()
	created, err := svc.Create(ctx, rep.UserID, &dto.CreateAssignmentRequest{
		Course: "MTH 101", Title: "Problem set 1", DueAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create 报错: %v", err)
	}

	if _, err := svc.Get(ctx, created.ID, alice.UserID); err != nil {
		t.Fatalf("同班同学应可见: %v", err)
	}
	// 别班学生拿到 ID 也不可见，且不暴露作业是否存在
	if _, err := svc.Get(ctx, created.ID, outsider.UserID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("别班学生期望 ErrAssignmentNotFound, 实际 %v", err)
	}
}
