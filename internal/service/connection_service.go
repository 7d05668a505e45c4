package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// ── 连接模块业务错误 ──

var (
	ErrConnectionEmptyTypes  = errors.New("select at least one option")
	ErrConnectionInvalidType = errors.New("invalid connection type")
	ErrConnectionSelf        = errors.New("cannot connect to yourself")
	ErrConnectionNotFound    = errors.New("connection not found")
	ErrConnectionNotOwner    = errors.New("not your connection")
	ErrConnectionPeerMissing = errors.New("user not found")
)

// ── ConnectionService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 连接是定向边：follower 请求查看 following 的指定类型内容。
//     每个有序对至多一条边，由数据库唯一索引 + Upsert 保证；
//     重复 Connect 等价于整体替换授权类型。
//   - Resolve 是全部内容聚合的统一可见性入口：自己的内容（若有）
//     永远可见且排在首位；其余来源为所有授权该类型的连接，按
//     创建时间排序。多条连接授权同一类型时全部合并，由调用方
//     按来源标注归属。
//   - 任何存储错误一律失败关闭（fail closed）：原样返回错误，
//     不降级为"仅显示自己的数据"。
// ─────────────────────────────────────────────────────────────

// ConnectionService 同学连接业务接口
type ConnectionService interface {
	// Connect 创建（或整体替换）一条连接
	Connect(ctx context.Context, followerID string, req *dto.ConnectRequest) (*dto.ConnectionResponse, error)
	// UpdateTypes 整体替换授权类型集合
	UpdateTypes(ctx context.Context, connectionID, followerID string, req *dto.UpdateConnectionTypesRequest) (*dto.ConnectionResponse, error)
	// Disconnect 删除连接；删除不存在的连接不报错（幂等）
	Disconnect(ctx context.Context, followerID, followingID string) error
	// ListOutgoing 我发起的连接
	ListOutgoing(ctx context.Context, userID string) ([]dto.ConnectionResponse, error)
	// ListIncoming 连接到我的连接
	ListIncoming(ctx context.Context, userID string) ([]dto.ConnectionResponse, error)
	// Resolve 解析指定内容类型的可见来源
	Resolve(ctx context.Context, viewerID, kind string) (*dto.VisibilityResponse, error)
	// GrantingPeers 返回授权了指定类型的对端用户（供内容聚合复用）
	GrantingPeers(ctx context.Context, viewerID, kind string) ([]model.User, error)
}

type connectionService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewConnectionService 创建 ConnectionService 实例
func NewConnectionService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) ConnectionService {
	return &connectionService{repo: repo, notifier: notifier, logger: logger}
}

func (s *connectionService) Connect(ctx context.Context, followerID string, req *dto.ConnectRequest) (*dto.ConnectionResponse, error) {
	if err := validateTypes(req.Types); err != nil {
		return nil, err
	}
	if followerID == req.FollowingID {
		return nil, ErrConnectionSelf
	}

	// 对端必须存在
	peer, err := s.repo.User.GetByID(ctx, req.FollowingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionPeerMissing
		}
		s.logger.Error("查询对端用户失败", zap.Error(err))
		return nil, err
	}

	conn := model.Connection{
		FollowerID:      followerID,
		FollowingID:     req.FollowingID,
		ConnectionTypes: dedupTypes(req.Types),
	}
	if err := s.repo.Connection.Upsert(ctx, &conn); err != nil {
		s.logger.Error("创建连接失败", zap.Error(err))
		return nil, err
	}

	// Upsert 走冲突更新分支时不回填主键，重新读取一次
	saved, err := s.repo.Connection.GetByPair(ctx, followerID, req.FollowingID)
	if err != nil {
		s.logger.Error("读取连接失败", zap.Error(err))
		return nil, err
	}

	// 通知被连接方；失败仅记录，不影响连接结果
	follower, err := s.repo.User.GetByID(ctx, followerID)
	if err == nil {
		relatedType := model.NotificationTypeConnection
		if nerr := s.notifier.Notify(ctx, peer.UserID, model.NotificationTypeConnection,
			"New connection", follower.Name+" connected with you", &relatedType, &saved.ConnectionID); nerr != nil {
			s.logger.Warn("连接通知发送失败", zap.Error(nerr))
		}
	}

	resp := toConnectionResponse(*saved)
	resp.PeerName = peer.Name
	resp.PeerAvatar = peer.AvatarURL
	return &resp, nil
}

func (s *connectionService) UpdateTypes(ctx context.Context, connectionID, followerID string, req *dto.UpdateConnectionTypesRequest) (*dto.ConnectionResponse, error) {
	if err := validateTypes(req.Types); err != nil {
		return nil, err
	}

	conn, err := s.repo.Connection.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	if conn.FollowerID != followerID {
		return nil, ErrConnectionNotOwner
	}

	types := dedupTypes(req.Types)
	if err := s.repo.Connection.UpdateTypes(ctx, connectionID, types); err != nil {
		s.logger.Error("更新连接授权失败", zap.Error(err))
		return nil, err
	}

	conn.ConnectionTypes = types
	resp := toConnectionResponse(*conn)
	return &resp, nil
}

func (s *connectionService) Disconnect(ctx context.Context, followerID, followingID string) error {
	if err := s.repo.Connection.DeleteByPair(ctx, followerID, followingID); err != nil {
		s.logger.Error("删除连接失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *connectionService) ListOutgoing(ctx context.Context, userID string) ([]dto.ConnectionResponse, error) {
	conns, err := s.repo.Connection.ListByFollower(ctx, userID)
	if err != nil {
		s.logger.Error("查询连接列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		resp := toConnectionResponse(c)
		if c.Following != nil {
			resp.PeerName = c.Following.Name
			resp.PeerAvatar = c.Following.AvatarURL
		}
		result = append(result, resp)
	}
	return result, nil
}

func (s *connectionService) ListIncoming(ctx context.Context, userID string) ([]dto.ConnectionResponse, error) {
	conns, err := s.repo.Connection.ListByFollowing(ctx, userID)
	if err != nil {
		s.logger.Error("查询连接列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		resp := toConnectionResponse(c)
		if c.Follower != nil {
			resp.PeerName = c.Follower.Name
			resp.PeerAvatar = c.Follower.AvatarURL
		}
		result = append(result, resp)
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// Resolve — 可见性解析
// ════════════════════════════════════════════════════════════
//
// 流程：
//   1. 判断自己是否有该类型的内容（有则作为首个来源）
//   2. 扫描出边，收集所有授权该类型的对端（创建时间序）
//   3. 无任何来源时 visible=false

func (s *connectionService) Resolve(ctx context.Context, viewerID, kind string) (*dto.VisibilityResponse, error) {
	if !model.ValidConnectionType(kind) {
		return nil, ErrConnectionInvalidType
	}

	resp := &dto.VisibilityResponse{Kind: kind}

	hasOwn, err := s.hasOwnContent(ctx, viewerID, kind)
	if err != nil {
		s.logger.Error("检查自有内容失败", zap.Error(err))
		return nil, err
	}
	if hasOwn {
		viewer, err := s.repo.User.GetByID(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		resp.Sources = append(resp.Sources, dto.VisibilitySource{
			UserID:    viewerID,
			Name:      viewer.Name,
			IsOwnData: true,
		})
	}

	peers, err := s.GrantingPeers(ctx, viewerID, kind)
	if err != nil {
		return nil, err
	}
	for _, p := range peers {
		resp.Sources = append(resp.Sources, dto.VisibilitySource{
			UserID:    p.UserID,
			Name:      p.Name,
			IsOwnData: false,
		})
	}

	resp.Visible = len(resp.Sources) > 0
	return resp, nil
}

func (s *connectionService) GrantingPeers(ctx context.Context, viewerID, kind string) ([]model.User, error) {
	conns, err := s.repo.Connection.ListByFollower(ctx, viewerID)
	if err != nil {
		s.logger.Error("查询出边失败", zap.Error(err))
		return nil, err
	}

	var peers []model.User
	for _, c := range conns {
		if !c.Grants(kind) || c.Following == nil {
			continue
		}
		peers = append(peers, *c.Following)
	}
	return peers, nil
}

// hasOwnContent 按内容类型探测查看者是否有自己的数据
// 作业按班级共享，视为恒有自有内容；课程大纲无独立存储，
// 仅能通过连接查看
func (s *connectionService) hasOwnContent(ctx context.Context, viewerID, kind string) (bool, error) {
	switch kind {
	case model.ConnectionTypeTimetable, model.ConnectionTypeTodayClasses:
		entries, err := s.repo.Timetable.ListByUser(ctx, viewerID)
		if err != nil {
			return false, err
		}
		return len(entries) > 0, nil
	case model.ConnectionTypeAssignments:
		return true, nil
	case model.ConnectionTypeCourseOutline:
		return false, nil
	}
	return false, nil
}

// ── 私有辅助方法 ──

func validateTypes(types []string) error {
	if len(types) == 0 {
		return ErrConnectionEmptyTypes
	}
	for _, t := range types {
		if !model.ValidConnectionType(t) {
			return ErrConnectionInvalidType
		}
	}
	return nil
}

func dedupTypes(types []string) []string {
	seen := make(map[string]bool, len(types))
	result := make([]string, 0, len(types))
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			result = append(result, t)
		}
	}
	return result
}

// ── 响应转换器 ──

func toConnectionResponse(c model.Connection) dto.ConnectionResponse {
	return dto.ConnectionResponse{
		ID:          c.ConnectionID,
		FollowerID:  c.FollowerID,
		FollowingID: c.FollowingID,
		Types:       []string(c.ConnectionTypes),
		CreatedAt:   c.CreatedAt,
	}
}
