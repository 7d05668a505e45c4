package service

import (
	"context"
	"errors"
	"testing"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

func TestUpdateProfilePartialFields(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := NewUserService(env.repo, env.logger)

	ctx := context.Background()
	bio := "CS sophomore"
	resp, err := svc.UpdateProfile(ctx, alice.UserID, &dto.UpdateProfileRequest{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile 报错: %v", err)
	}
	if resp.Bio != bio {
		t.Errorf("Bio 未更新: %s", resp.Bio)
	}
	// 未提供的字段保持原值
	if resp.Name != "Alice" || resp.School != testGroup.School {
		t.Errorf("未提供的字段不应变化: %+v", resp)
	}
}

func TestListClassmatesWithConnectionState(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	bob := env.addUser("Bob", model.RoleStudent, testGroup)
	env.addUser("Outsider", model.RoleStudent, model.ClassGroup{
		School: "Science", Department: "Physics", Level: 3, Semester: "second",
	})
	svc := NewUserService(env.repo, env.logger)
	connSvc := newConnectionTestService(env)

	ctx := context.Background()
	if _, err := connSvc.Connect(ctx, alice.UserID, &dto.ConnectRequest{
		FollowingID: bob.UserID,
		Types:       []string{model.ConnectionTypeTimetable},
	}); err != nil {
		t.Fatalf("Connect 报错: %v", err)
	}

	classmates, err := svc.ListClassmates(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("ListClassmates 报错: %v", err)
	}
	// 本人与别班学生不在列表中
	if len(classmates) != 1 {
		t.Fatalf("期望 1 个同班同学, 实际 %d", len(classmates))
	}
	c := classmates[0]
	if c.ID != bob.UserID || !c.Connected {
		t.Errorf("Bob 应标记为已连接: %+v", c)
	}
	if len(c.ConnectionTypes) != 1 || c.ConnectionTypes[0] != model.ConnectionTypeTimetable {
		t.Errorf("连接类型应回填: %v", c.ConnectionTypes)
	}
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser("Alice", model.RoleStudent, testGroup)
	svc := NewUserService(env.repo, env.logger)

	ctx := context.Background()
	if err := svc.DeleteAccount(ctx, alice.UserID); err != nil {
		t.Fatalf("DeleteAccount 报错: %v", err)
	}
	if _, err := svc.GetProfile(ctx, alice.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("注销后期望 ErrUserNotFound, 实际 %v", err)
	}
}
