package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
	"github.com/Kent0710/classroom-announcement-app/internal/repository/mocks"
	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

func newRoomService(t *testing.T) (*service.RoomService, *mocks.RoomRepository, *mocks.MembershipRepository) {
	t.Helper()
	mockRoomRepo := new(mocks.RoomRepository)
	mockMembershipRepo := new(mocks.MembershipRepository)
	return service.NewRoomService(mockRoomRepo, mockMembershipRepo), mockRoomRepo, mockMembershipRepo
}

// --- CreateRoom ---

func TestRoomService_CreateRoom_Success(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)
	ctx := context.Background()

	mockRoomRepo.On("IsCodeExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	mockRoomRepo.On("Create", ctx, mock.MatchedBy(func(room *domain.Room) bool {
		assert.Equal(t, "Math 101", room.Name)
		assert.Equal(t, uint(10), room.CreatedBy)
		// 房间码必须是 6 位大写字母或数字
		assert.True(t, domain.ValidRoomCode(room.Code), "生成的房间码格式应合法: %q", room.Code)
		return true
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Room).ID = 1
		}).
		Return(nil).Once()

	room, err := roomService.CreateRoom(ctx, 10, "  Math 101  ")

	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, uint(1), room.ID)
	assert.Equal(t, "Math 101", room.Name, "房间名应去掉首尾空白")

	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_NameTaken(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)
	ctx := context.Background()

	mockRoomRepo.On("IsCodeExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	mockRoomRepo.On("Create", ctx, mock.AnythingOfType("*domain.Room")).Return(repository.ErrDuplicateRoomName).Once()

	_, err := roomService.CreateRoom(ctx, 10, "Math 101")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNameTaken))

	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_CodeCollisionRetries(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)
	ctx := context.Background()

	// 并发插入抢占了第一个码，第二次生成成功
	mockRoomRepo.On("IsCodeExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Twice()
	mockRoomRepo.On("Create", ctx, mock.AnythingOfType("*domain.Room")).Return(repository.ErrDuplicateRoomCode).Once()
	mockRoomRepo.On("Create", ctx, mock.AnythingOfType("*domain.Room")).Return(nil).Once()

	room, err := roomService.CreateRoom(ctx, 10, "Math 101")

	require.NoError(t, err)
	require.NotNil(t, room)
	mockRoomRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestRoomService_CreateRoom_CodeSpaceExhausted(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)
	ctx := context.Background()

	// 每次预检都命中已有房间码，十次后放弃
	mockRoomRepo.On("IsCodeExists", ctx, mock.AnythingOfType("string")).Return(true, nil).Times(10)

	_, err := roomService.CreateRoom(ctx, 10, "Math 101")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomCodeExhausted))
	mockRoomRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomService_CreateRoom_InvalidName(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)

	_, err := roomService.CreateRoom(context.Background(), 10, "   ")
	assert.True(t, errors.Is(err, service.ErrInvalidRoomName))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err = roomService.CreateRoom(context.Background(), 10, string(long))
	assert.True(t, errors.Is(err, service.ErrInvalidRoomName))

	mockRoomRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- JoinRoom ---

func TestRoomService_JoinRoom_Success(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, Name: "Math 101", Code: "AB12CD", CreatedBy: 10}

	mockRoomRepo.On("FindByCode", ctx, "AB12CD").Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Create", ctx, mock.MatchedBy(func(m *domain.Membership) bool {
		return m.RoomID == 1 && m.UserID == 20 && m.Role == domain.RoleMember
	})).Return(nil).Once()

	// 小写输入应被规范化后查询
	result, err := roomService.JoinRoom(ctx, 20, "ab12cd")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.AlreadyMember)
	assert.Equal(t, domain.RoleMember, result.Role)
	assert.Equal(t, uint(1), result.Room.ID)

	mockRoomRepo.AssertExpectations(t)
	mockMembershipRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_OwnerIsNoop(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, Code: "AB12CD", CreatedBy: 10}

	mockRoomRepo.On("FindByCode", ctx, "AB12CD").Return(room, nil).Once()

	result, err := roomService.JoinRoom(ctx, 10, "AB12CD")

	require.NoError(t, err)
	assert.True(t, result.AlreadyMember)
	assert.Equal(t, domain.RoleOwner, result.Role)
	// 创建者加入自己的房间不应产生任何成员写入
	mockMembershipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomService_JoinRoom_ExistingMemberIsNoop(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, Code: "AB12CD", CreatedBy: 10}
	existing := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleAdmin}

	mockRoomRepo.On("FindByCode", ctx, "AB12CD").Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(existing, nil).Once()

	result, err := roomService.JoinRoom(ctx, 20, "AB12CD")

	require.NoError(t, err)
	assert.True(t, result.AlreadyMember)
	assert.Equal(t, domain.RoleAdmin, result.Role, "no-op 应返回当前角色")
	mockMembershipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomService_JoinRoom_ConcurrentDuplicate(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, Code: "AB12CD", CreatedBy: 10}
	winner := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleMember}

	mockRoomRepo.On("FindByCode", ctx, "AB12CD").Return(room, nil).Once()
	// 第一次检查时还不是成员，插入时被并发请求抢先
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Create", ctx, mock.AnythingOfType("*domain.Membership")).Return(repository.ErrDuplicateMembership).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(winner, nil).Once()

	result, err := roomService.JoinRoom(ctx, 20, "AB12CD")

	require.NoError(t, err, "并发重复加入应收敛为已是成员")
	assert.True(t, result.AlreadyMember)
	assert.Equal(t, domain.RoleMember, result.Role)
	mockMembershipRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_InvalidAndUnknownCode(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)
	ctx := context.Background()

	_, err := roomService.JoinRoom(ctx, 20, "short")
	assert.True(t, errors.Is(err, service.ErrInvalidRoomCode))

	mockRoomRepo.On("FindByCode", ctx, "ZZZZZZ").Return(nil, repository.ErrRoomNotFound).Once()
	_, err = roomService.JoinRoom(ctx, 20, "zzzzzz")
	assert.True(t, errors.Is(err, service.ErrRoomNotFound))
}

// --- PromoteMember / DemoteMember ---

func TestRoomService_PromoteMember_ByOwner(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	target := &domain.Membership{ID: 3, RoomID: 1, UserID: 30, Role: domain.RoleMember}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	// 房主没有持久化的成员记录
	mockMembershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()
	mockMembershipRepo.On("ChangeRole", ctx, uint(1), uint(30), domain.RoleMember, mock.AnythingOfType("func(*domain.Membership)")).
		Run(func(args mock.Arguments) {
			apply := args.Get(4).(func(*domain.Membership))
			apply(target)
		}).
		Return(target, nil).Once()

	changed, err := roomService.PromoteMember(ctx, 1, 10, 30)

	require.NoError(t, err)
	require.NotNil(t, changed)
	assert.Equal(t, domain.RoleAdmin, changed.Role)
	require.NotNil(t, changed.PromotedAt, "提升应记录时间")
	require.NotNil(t, changed.PromotedBy)
	assert.Equal(t, uint(10), *changed.PromotedBy, "提升应记录操作者")

	mockMembershipRepo.AssertExpectations(t)
}

func TestRoomService_PromoteMember_NotOwner(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	actor := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleAdmin}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(actor, nil).Once()

	_, err := roomService.PromoteMember(ctx, 1, 20, 30)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrOnlyOwnerCanPromote), "管理员也不能提升成员")
	mockMembershipRepo.AssertNotCalled(t, "ChangeRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomService_PromoteMember_AlreadyAdmin(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	target := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleAdmin}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()

	_, err := roomService.PromoteMember(ctx, 1, 10, 30)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAlreadyAdmin))
}

func TestRoomService_DemoteMember_ByOwner(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	promotedBy := uint(10)
	target := &domain.Membership{ID: 3, RoomID: 1, UserID: 30, Role: domain.RoleAdmin, PromotedBy: &promotedBy}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()
	mockMembershipRepo.On("ChangeRole", ctx, uint(1), uint(30), domain.RoleAdmin, mock.AnythingOfType("func(*domain.Membership)")).
		Run(func(args mock.Arguments) {
			apply := args.Get(4).(func(*domain.Membership))
			apply(target)
		}).
		Return(target, nil).Once()

	changed, err := roomService.DemoteMember(ctx, 1, 10, 30)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, changed.Role)
	assert.Nil(t, changed.PromotedAt, "降级应清空提升记录")
	assert.Nil(t, changed.PromotedBy)
}

func TestRoomService_DemoteMember_TargetNotAdmin(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	target := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleMember}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()

	_, err := roomService.DemoteMember(ctx, 1, 10, 30)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotAnAdmin))
}

func TestRoomService_PromoteMember_ConcurrentConflict(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	target := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleMember}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()
	// 加锁重读时发现角色已被并发修改
	mockMembershipRepo.On("ChangeRole", ctx, uint(1), uint(30), domain.RoleMember, mock.AnythingOfType("func(*domain.Membership)")).
		Return(nil, repository.ErrStaleRecord).Once()

	_, err := roomService.PromoteMember(ctx, 1, 10, 30)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrConcurrentConflict))
}

// --- KickMember ---

func TestRoomService_KickMember_AdminKicksMember(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	actor := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleAdmin}
	target := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleMember}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(actor, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()
	mockMembershipRepo.On("Remove", ctx, uint(1), uint(30), domain.RoleMember).Return(nil).Once()

	err := roomService.KickMember(ctx, 1, 20, 30)

	require.NoError(t, err)
	mockMembershipRepo.AssertExpectations(t)
}

func TestRoomService_KickMember_MemberCannotKick(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	actor := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleMember}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(actor, nil).Once()

	err := roomService.KickMember(ctx, 1, 20, 30)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrCannotKickMembers))
	mockMembershipRepo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomService_KickMember_AdminCannotKickAdmin(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	actor := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleAdmin}
	target := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleAdmin}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(actor, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()

	err := roomService.KickMember(ctx, 1, 20, 30)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrOnlyOwnerCanKickAdmin), "管理员只能由房主移除")
}

func TestRoomService_KickMember_OwnerKicksAdmin(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	target := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleAdmin}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(target, nil).Once()
	mockMembershipRepo.On("Remove", ctx, uint(1), uint(30), domain.RoleAdmin).Return(nil).Once()

	err := roomService.KickMember(ctx, 1, 10, 30)

	require.NoError(t, err)
	mockMembershipRepo.AssertExpectations(t)
}

func TestRoomService_KickMember_CannotKickSelf(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	actor := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleAdmin}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(actor, nil).Twice()

	err := roomService.KickMember(ctx, 1, 20, 20)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrCannotKickSelf))
}

// --- LeaveRoom / DeleteRoom ---

func TestRoomService_LeaveRoom_Success(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	m := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleMember}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(20)).Return(m, nil).Once()
	mockMembershipRepo.On("Remove", ctx, uint(1), uint(20), domain.RoleMember).Return(nil).Once()

	err := roomService.LeaveRoom(ctx, 1, 20)

	require.NoError(t, err)
	mockMembershipRepo.AssertExpectations(t)
}

func TestRoomService_LeaveRoom_OwnerBlocked(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()

	err := roomService.LeaveRoom(ctx, 1, 10)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrOwnerCannotLeave))
	mockMembershipRepo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomService_DeleteRoom_OwnerOnly(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Twice()
	mockRoomRepo.On("DeleteCascade", ctx, uint(1)).Return(nil).Once()

	// 非房主删除被拒绝
	err := roomService.DeleteRoom(ctx, 1, 20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrOnlyOwnerCanDelete))

	// 房主删除成功
	err = roomService.DeleteRoom(ctx, 1, 10)
	require.NoError(t, err)

	mockRoomRepo.AssertExpectations(t)
}

// --- RoomsForUser / RoomDetail ---

func TestRoomService_RoomsForUser(t *testing.T) {
	roomService, mockRoomRepo, _ := newRoomService(t)
	ctx := context.Background()
	owned := []domain.Room{{ID: 1, CreatedBy: 10}}
	joined := []domain.Room{{ID: 2, CreatedBy: 99}}

	mockRoomRepo.On("FindOwnedBy", ctx, uint(10)).Return(owned, nil).Once()
	mockRoomRepo.On("FindJoinedBy", ctx, uint(10)).Return(joined, nil).Once()

	overview, err := roomService.RoomsForUser(ctx, 10)

	require.NoError(t, err)
	assert.Len(t, overview.Owned, 1)
	assert.Len(t, overview.Joined, 1)
}

func TestRoomService_RoomDetail_GroupsMembersByRole(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	memberships := []domain.Membership{
		{RoomID: 1, UserID: 20, Role: domain.RoleAdmin},
		{RoomID: 1, UserID: 30, Role: domain.RoleMember},
		{RoomID: 1, UserID: 40, Role: domain.RoleMember},
	}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(30)).Return(&memberships[1], nil).Once()
	mockMembershipRepo.On("ListByRoom", ctx, uint(1)).Return(memberships, nil).Once()

	detail, err := roomService.RoomDetail(ctx, 1, 30)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, detail.Role)
	// 房主没有成员行，应合成 owner 视图
	require.NotNil(t, detail.Owner)
	assert.Equal(t, uint(10), detail.Owner.UserID)
	assert.Equal(t, domain.RoleOwner, detail.Owner.Role)
	assert.Len(t, detail.Admins, 1)
	assert.Len(t, detail.Members, 2)
}

func TestRoomService_RoomDetail_NonMemberRejected(t *testing.T) {
	roomService, mockRoomRepo, mockMembershipRepo := newRoomService(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}

	mockRoomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	mockMembershipRepo.On("Find", ctx, uint(1), uint(99)).Return(nil, repository.ErrMembershipNotFound).Once()

	_, err := roomService.RoomDetail(ctx, 1, 99)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoRoomAccess))
	mockMembershipRepo.AssertNotCalled(t, "ListByRoom", mock.Anything, mock.Anything)
}
