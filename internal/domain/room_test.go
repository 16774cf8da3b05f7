package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12CD", domain.NormalizeRoomCode("ab12cd"))
	assert.Equal(t, "AB12CD", domain.NormalizeRoomCode("  Ab12Cd  "))
	assert.Equal(t, "AB12CD", domain.NormalizeRoomCode("AB12CD"))
}

func TestValidRoomCode(t *testing.T) {
	assert.True(t, domain.ValidRoomCode("AB12CD"))
	assert.True(t, domain.ValidRoomCode("000000"))
	assert.True(t, domain.ValidRoomCode("ZZZZZZ"))

	assert.False(t, domain.ValidRoomCode("ab12cd"), "小写未规范化不应通过")
	assert.False(t, domain.ValidRoomCode("AB12C"), "长度不足")
	assert.False(t, domain.ValidRoomCode("AB12CDE"), "长度超出")
	assert.False(t, domain.ValidRoomCode("AB12C!"), "非法字符")
	assert.False(t, domain.ValidRoomCode(""))
}

func TestIsCreator(t *testing.T) {
	room := &domain.Room{ID: 1, CreatedBy: 42}
	assert.True(t, room.IsCreator(42))
	assert.False(t, room.IsCreator(7))
}
