package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// RoomService 负责房间与成员管理相关的业务逻辑。
// 每个写操作都先经过 domain 包的权限判定，被拒绝的操作返回
// 具体的业务错误且不改变任何状态。
type RoomService struct {
	roomRepo       repository.RoomRepository
	membershipRepo repository.MembershipRepository
}

// NewRoomService 创建 RoomService 实例。
func NewRoomService(roomRepo repository.RoomRepository, membershipRepo repository.MembershipRepository) *RoomService {
	if roomRepo == nil || membershipRepo == nil {
		panic("all repositories must be non-nil for RoomService")
	}
	return &RoomService{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
	}
}

// JoinResult 描述一次加入房间请求的结果。
// 创建者或已有成员重复加入不是错误，而是携带当前角色的 no-op。
type JoinResult struct {
	Room          *domain.Room
	Role          domain.Role
	AlreadyMember bool
}

// RoomOverview 是用户主页的房间列表。
type RoomOverview struct {
	Owned  []domain.Room
	Joined []domain.Room
}

// RoomDetail 是房间详情页所需的数据：房间、调用者角色、按角色
// 分组的成员列表。Owner 可能是合成的记录（创建者没有成员行时）。
type RoomDetail struct {
	Room    *domain.Room
	Role    domain.Role
	Owner   *domain.Membership
	Admins  []domain.Membership
	Members []domain.Membership
}

// CreateRoom 创建一个新房间。
//
// 房间码通过随机采样生成，唯一性最终由存储层唯一索引保证：
// 插入时的码冲突触发重新生成，连续超过上限视为码空间耗尽。
// 房间名冲突直接返回给用户。创建者不写入成员记录，其 owner
// 身份由 domain.RoleOf 从 CreatedBy 推导。
func (s *RoomService) CreateRoom(ctx context.Context, ownerID uint, name string) (*domain.Room, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": ownerID, "room_name": name})

	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidRoomName
	}

	const maxAttempts = 10
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			logCtx.WithError(err).Error("Failed to generate room code")
			return nil, ErrInternalServer
		}

		// 快速预检，减少明显会冲突的插入；真正的保证在唯一索引
		exists, err := s.roomRepo.IsCodeExists(ctx, code)
		if err != nil {
			logCtx.WithError(err).Error("Database error checking room code uniqueness")
			return nil, ErrInternalServer
		}
		if exists {
			logCtx.WithField("room_code", code).Warnf("Generated room code already exists, retrying (attempt %d)", attempt+1)
			continue
		}

		room := &domain.Room{
			Name:      name,
			Code:      code,
			CreatedBy: ownerID,
		}
		err = s.roomRepo.Create(ctx, room)
		if err == nil {
			logCtx.WithFields(logrus.Fields{"room_id": room.ID, "room_code": room.Code}).Info("Room created successfully")
			return room, nil
		}
		if errors.Is(err, repository.ErrDuplicateRoomCode) {
			// 并发创建抢占了同一个码，换一个再试
			logCtx.WithField("room_code", code).Warnf("Room code collided on insert, retrying (attempt %d)", attempt+1)
			continue
		}
		if errors.Is(err, repository.ErrDuplicateRoomName) {
			logCtx.Warn("Room creation failed: name already taken")
			return nil, ErrRoomNameTaken
		}
		logCtx.WithError(err).Error("Failed to save new room")
		return nil, ErrInternalServer
	}

	logCtx.Errorf("Failed to allocate a unique room code after %d attempts", maxAttempts)
	return nil, ErrRoomCodeExhausted
}

// JoinRoom 处理用户通过房间码加入房间。
func (s *RoomService) JoinRoom(ctx context.Context, userID uint, code string) (*JoinResult, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_code": code})

	code = domain.NormalizeRoomCode(code)
	if !domain.ValidRoomCode(code) {
		return nil, ErrInvalidRoomCode
	}

	room, err := s.roomRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Warn("Join failed: no room with this code")
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Database error finding room by code")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("room_id", room.ID)

	// 创建者"加入"自己的房间是 no-op
	if room.IsCreator(userID) {
		return &JoinResult{Room: room, Role: domain.RoleOwner, AlreadyMember: true}, nil
	}

	existing, err := s.membershipOrNil(ctx, room.ID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Database error checking existing membership")
		return nil, ErrInternalServer
	}
	if existing != nil {
		return &JoinResult{Room: room, Role: existing.Role, AlreadyMember: true}, nil
	}

	m := &domain.Membership{RoomID: room.ID, UserID: userID, Role: domain.RoleMember}
	err = s.membershipRepo.Create(ctx, m)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			// 并发的重复加入被唯一索引挡下，按已是成员处理
			logCtx.Info("Concurrent join detected, treating as already a member")
			current, findErr := s.membershipOrNil(ctx, room.ID, userID)
			if findErr != nil || current == nil {
				return nil, ErrInternalServer
			}
			return &JoinResult{Room: room, Role: current.Role, AlreadyMember: true}, nil
		}
		logCtx.WithError(err).Error("Failed to create membership")
		return nil, ErrInternalServer
	}

	logCtx.Info("User joined room successfully")
	return &JoinResult{Room: room, Role: domain.RoleMember}, nil
}

// LeaveRoom 处理成员主动退出房间。房主不能退出。
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, userID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return err
	}
	if room.IsCreator(userID) {
		return ErrOwnerCannotLeave
	}

	m, err := s.membershipOrNil(ctx, roomID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Database error finding membership")
		return ErrInternalServer
	}
	if m == nil {
		return ErrMembershipNotFound
	}

	if err := s.removeMembership(ctx, roomID, userID, m.Role, logCtx); err != nil {
		return err
	}
	logCtx.Info("User left room")
	return nil
}

// KickMember 处理管理员/房主将成员移出房间。
// 规则：需要管理员及以上权限；不能移除房主；不能移除自己；
// 管理员只能由房主移除。
func (s *RoomService) KickMember(ctx context.Context, roomID, actorID, targetUserID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "actor_id": actorID, "target_user_id": targetUserID})

	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return err
	}

	actorMembership, err := s.actorMembership(ctx, room, actorID, logCtx)
	if err != nil {
		return err
	}
	if !domain.IsAdminOrAbove(room, actorID, actorMembership) {
		return ErrCannotKickMembers
	}

	target, err := s.membershipOrNil(ctx, roomID, targetUserID)
	if err != nil {
		logCtx.WithError(err).Error("Database error finding target membership")
		return ErrInternalServer
	}
	if target == nil {
		return ErrMembershipNotFound
	}

	if target.IsOwner() || room.IsCreator(targetUserID) {
		return ErrCannotKickOwner
	}
	if targetUserID == actorID {
		return ErrCannotKickSelf
	}
	if target.IsAdmin() && !room.IsCreator(actorID) {
		return ErrOnlyOwnerCanKickAdmin
	}

	if err := s.removeMembership(ctx, roomID, targetUserID, target.Role, logCtx); err != nil {
		return err
	}
	logCtx.WithField("target_role", target.Role).Info("Member kicked from room")
	return nil
}

// PromoteMember 将普通成员提升为管理员。仅房主可以操作，提升时
// 记录 promoted_at/promoted_by。
func (s *RoomService) PromoteMember(ctx context.Context, roomID, actorID, targetUserID uint) (*domain.Membership, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "actor_id": actorID, "target_user_id": targetUserID})

	_, target, err := s.prepareRoleChange(ctx, roomID, actorID, targetUserID, ErrOnlyOwnerCanPromote, logCtx)
	if err != nil {
		return nil, err
	}

	if target.Role != domain.RoleMember {
		return nil, ErrAlreadyAdmin
	}

	now := time.Now().UTC()
	changed, err := s.membershipRepo.ChangeRole(ctx, roomID, targetUserID, domain.RoleMember, func(m *domain.Membership) {
		m.Promote(actorID, now)
	})
	if err != nil {
		return nil, s.mapRoleChangeError(err, logCtx)
	}
	logCtx.Info("Member promoted to admin")
	return changed, nil
}

// DemoteMember 将管理员降级为普通成员。仅房主可以操作，降级时
// 清空 promoted_at/promoted_by。
func (s *RoomService) DemoteMember(ctx context.Context, roomID, actorID, targetUserID uint) (*domain.Membership, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "actor_id": actorID, "target_user_id": targetUserID})

	room, target, err := s.prepareRoleChange(ctx, roomID, actorID, targetUserID, ErrOnlyOwnerCanDemote, logCtx)
	if err != nil {
		return nil, err
	}

	if target.IsOwner() || room.IsCreator(targetUserID) {
		return nil, ErrCannotKickOwner
	}
	if target.Role != domain.RoleAdmin {
		return nil, ErrNotAnAdmin
	}

	changed, err := s.membershipRepo.ChangeRole(ctx, roomID, targetUserID, domain.RoleAdmin, func(m *domain.Membership) {
		m.Demote()
	})
	if err != nil {
		return nil, s.mapRoleChangeError(err, logCtx)
	}
	logCtx.Info("Admin demoted to member")
	return changed, nil
}

// DeleteRoom 删除房间及其全部成员关系、公告和表情回应。仅房主可以操作。
func (s *RoomService) DeleteRoom(ctx context.Context, roomID, actorID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "actor_id": actorID})

	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return err
	}
	if !room.IsCreator(actorID) {
		return ErrOnlyOwnerCanDelete
	}

	if err := s.roomRepo.DeleteCascade(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to delete room cascade")
		return ErrInternalServer
	}
	logCtx.Info("Room deleted")
	return nil
}

// UpdateRoom 更新房间名称。需要管理员及以上权限。
func (s *RoomService) UpdateRoom(ctx context.Context, roomID, actorID uint, name string) (*domain.Room, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "actor_id": actorID})

	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidRoomName
	}

	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return nil, err
	}

	actorMembership, err := s.actorMembership(ctx, room, actorID, logCtx)
	if err != nil {
		return nil, err
	}
	if !domain.IsAdminOrAbove(room, actorID, actorMembership) {
		return nil, ErrCannotEditRoom
	}

	room.Name = name
	if err := s.roomRepo.Update(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicateRoomName) {
			return nil, ErrRoomNameTaken
		}
		logCtx.WithError(err).Error("Failed to update room")
		return nil, ErrInternalServer
	}
	logCtx.Info("Room updated")
	return room, nil
}

// RoomsForUser 返回用户创建的与作为成员加入的房间列表。
func (s *RoomService) RoomsForUser(ctx context.Context, userID uint) (*RoomOverview, error) {
	owned, err := s.roomRepo.FindOwnedBy(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list owned rooms")
		return nil, ErrInternalServer
	}
	joined, err := s.roomRepo.FindJoinedBy(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list joined rooms")
		return nil, ErrInternalServer
	}
	return &RoomOverview{Owned: owned, Joined: joined}, nil
}

// RoomDetail 返回房间详情：调用者角色与按角色分组的成员。
// 非成员无法查看。
func (s *RoomService) RoomDetail(ctx context.Context, roomID, actorID uint) (*RoomDetail, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "actor_id": actorID})

	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return nil, err
	}

	actorMembership, err := s.actorMembership(ctx, room, actorID, logCtx)
	if err != nil {
		return nil, err
	}
	role, ok := domain.RoleOf(room, actorID, actorMembership)
	if !ok {
		return nil, ErrNoRoomAccess
	}

	memberships, err := s.membershipRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list room memberships")
		return nil, ErrInternalServer
	}

	detail := &RoomDetail{Room: room, Role: role}
	for i := range memberships {
		m := memberships[i]
		switch {
		case m.IsOwner():
			detail.Owner = &m
		case m.IsAdmin():
			detail.Admins = append(detail.Admins, m)
		default:
			detail.Members = append(detail.Members, m)
		}
	}
	if detail.Owner == nil {
		// 创建者没有持久化的成员行时合成 owner 视图
		detail.Owner = domain.MembershipFor(room, room.CreatedBy, nil)
	}
	return detail, nil
}

// --- 私有辅助函数 ---

// generateRoomCode 从 [A-Z0-9] 随机采样生成 6 位房间码
func generateRoomCode() (string, error) {
	b := make([]byte, domain.RoomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range b {
		b[i] = domain.RoomCodeAlphabet[int(b[i])%len(domain.RoomCodeAlphabet)]
	}
	return string(b), nil
}

// findRoom 查找房间并把未找到映射为业务错误
func (s *RoomService) findRoom(ctx context.Context, roomID uint, logCtx *logrus.Entry) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Database error finding room")
		return nil, ErrInternalServer
	}
	return room, nil
}

// membershipOrNil 查找成员记录，未找到返回 (nil, nil)
func (s *RoomService) membershipOrNil(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	m, err := s.membershipRepo.Find(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// actorMembership 加载操作者的成员记录，并断言存储角色与从
// CreatedBy 推导的角色一致。两种推导按不变式必须一致，一旦发现
// 分歧只记录错误日志（以推导结果为准），不中断请求。
func (s *RoomService) actorMembership(ctx context.Context, room *domain.Room, actorID uint, logCtx *logrus.Entry) (*domain.Membership, error) {
	m, err := s.membershipOrNil(ctx, room.ID, actorID)
	if err != nil {
		logCtx.WithError(err).Error("Database error finding actor membership")
		return nil, ErrInternalServer
	}
	if m != nil {
		storedOwner := m.IsOwner()
		derivedOwner := room.IsCreator(actorID)
		if storedOwner != derivedOwner {
			logCtx.WithFields(logrus.Fields{
				"stored_role":   m.Role,
				"derived_owner": derivedOwner,
			}).Error("Stored membership role diverges from role derived from room creator")
		}
	}
	return m, nil
}

// prepareRoleChange 做提升/降级共用的前置检查：房间存在、操作者
// 是房主、目标成员存在、CanPromoteDemote 二次校验。
func (s *RoomService) prepareRoleChange(ctx context.Context, roomID, actorID, targetUserID uint, denied error, logCtx *logrus.Entry) (*domain.Room, *domain.Membership, error) {
	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return nil, nil, err
	}

	actorMembership, err := s.actorMembership(ctx, room, actorID, logCtx)
	if err != nil {
		return nil, nil, err
	}
	if !room.IsCreator(actorID) {
		return nil, nil, denied
	}

	target, err := s.membershipOrNil(ctx, roomID, targetUserID)
	if err != nil {
		logCtx.WithError(err).Error("Database error finding target membership")
		return nil, nil, ErrInternalServer
	}
	if target == nil {
		return nil, nil, ErrMembershipNotFound
	}

	// 基于存储角色的判定必须与上面的推导结果一致
	actorView := domain.MembershipFor(room, actorID, actorMembership)
	if !domain.CanPromoteDemote(actorView, target) {
		logCtx.WithField("target_user_id", targetUserID).Warn("Role change rejected by stored-role policy")
		return nil, nil, denied
	}
	return room, target, nil
}

// removeMembership 执行加锁删除并映射并发冲突
func (s *RoomService) removeMembership(ctx context.Context, roomID, userID uint, expect domain.Role, logCtx *logrus.Entry) error {
	err := s.membershipRepo.Remove(ctx, roomID, userID, expect)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return ErrMembershipNotFound
		}
		if errors.Is(err, repository.ErrStaleRecord) {
			return ErrConcurrentConflict
		}
		logCtx.WithError(err).Error("Failed to remove membership")
		return ErrInternalServer
	}
	return nil
}

// mapRoleChangeError 将仓库层角色变更错误映射为业务错误
func (s *RoomService) mapRoleChangeError(err error, logCtx *logrus.Entry) error {
	if errors.Is(err, repository.ErrMembershipNotFound) {
		return ErrMembershipNotFound
	}
	if errors.Is(err, repository.ErrStaleRecord) {
		return ErrConcurrentConflict
	}
	logCtx.WithError(err).Error("Failed to change membership role")
	return ErrInternalServer
}
