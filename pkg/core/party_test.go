package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacter_CloneIsIndependent(t *testing.T) {
	c := Character{ClassID: 1, Equipment: []int{1, 2}}
	clone := c.Clone()

	clone.Equipment[0] = 9
	assert.Equal(t, []int{1, 2}, c.Equipment)
	assert.Nil(t, Character{}.Clone().Equipment)
}

func TestCharacter_Equal(t *testing.T) {
	base := Character{ClassID: 1, Health: 2, Mana: 3, Strength: 4, Agility: 5, Wisdom: 6, Equipment: []int{1, 2}}

	assert.True(t, base.Equal(base.Clone()))
	assert.True(t, Character{Equipment: nil}.Equal(Character{Equipment: []int{}}))

	reordered := base.Clone()
	reordered.Equipment = []int{2, 1}
	assert.False(t, base.Equal(reordered))

	weaker := base.Clone()
	weaker.Strength = 0
	assert.False(t, base.Equal(weaker))
}

func TestParty_CloneAndEqual(t *testing.T) {
	p := Party{{ClassID: 1, Equipment: []int{4}}, {ClassID: 2}}
	clone := p.Clone()

	assert.True(t, p.Equal(clone))
	clone[0].Equipment[0] = 5
	assert.False(t, p.Equal(clone))

	assert.Nil(t, Party(nil).Clone())
	assert.True(t, Party(nil).Equal(Party{}))
	assert.False(t, p.Equal(p[:1]))
}
