package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

func TestToggleTransition(t *testing.T) {
	tests := []struct {
		name      string
		current   *domain.Reaction
		requested domain.ReactionType
		want      domain.ToggleOp
	}{
		{"无回应时点赞", nil, domain.ReactionLike, domain.ToggleCreate},
		{"重复点同一表情", &domain.Reaction{Type: domain.ReactionLike}, domain.ReactionLike, domain.ToggleRemove},
		{"点不同表情", &domain.Reaction{Type: domain.ReactionLike}, domain.ReactionLove, domain.ToggleReplace},
		{"替换后再点原表情", &domain.Reaction{Type: domain.ReactionLove}, domain.ReactionLike, domain.ToggleReplace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ToggleTransition(tt.current, tt.requested))
		})
	}
}

// 同一请求重复两次必须回到初始状态
func TestToggleTransition_Involution(t *testing.T) {
	for _, requested := range domain.ReactionTypes {
		// absent → create → present(requested) → remove → absent
		assert.Equal(t, domain.ToggleCreate, domain.ToggleTransition(nil, requested))
		afterCreate := &domain.Reaction{Type: requested}
		assert.Equal(t, domain.ToggleRemove, domain.ToggleTransition(afterCreate, requested))

		// present(other) → replace → present(requested) → replace → present(other)
		for _, other := range domain.ReactionTypes {
			if other == requested {
				continue
			}
			current := &domain.Reaction{Type: other}
			assert.Equal(t, domain.ToggleReplace, domain.ToggleTransition(current, requested))
			replaced := &domain.Reaction{Type: requested}
			assert.Equal(t, domain.ToggleReplace, domain.ToggleTransition(replaced, other))
		}
	}
}

func TestReactionTypeValidAndGlyph(t *testing.T) {
	for _, rt := range domain.ReactionTypes {
		assert.True(t, rt.Valid(), "类型 %s 应合法", rt)
		assert.NotEmpty(t, rt.Glyph(), "类型 %s 应有展示符号", rt)
	}
	assert.Len(t, domain.ReactionTypes, 6)

	assert.False(t, domain.ReactionType("thumbsdown").Valid())
	assert.False(t, domain.ReactionType("").Valid())
	assert.Empty(t, domain.ReactionType("thumbsdown").Glyph())
}
