package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/equipset/internal/entities"
)

func TestCategory_ContainsSelf(t *testing.T) {
	weapons := entities.NewCategory(1, "weapons")

	assert.True(t, weapons.Contains(weapons, true))
	assert.False(t, weapons.Contains(weapons, false))
}

func TestCategory_ContainsDescendant(t *testing.T) {
	// weapons -> melee -> swords
	weapons := entities.NewCategory(1, "weapons")
	melee := entities.NewCategory(2, "melee", weapons)
	swords := entities.NewCategory(3, "swords", melee)

	assert.True(t, weapons.Contains(melee, true))
	assert.True(t, weapons.Contains(swords, true))
	assert.True(t, melee.Contains(swords, true))

	// containment is directional: a child never contains its ancestor
	assert.False(t, swords.Contains(weapons, true))
	assert.False(t, melee.Contains(weapons, true))
}

func TestCategory_ContainsWalksArgumentAncestors(t *testing.T) {
	// The check resolves from the argument's parent chain, so a deep
	// descendant is found even when includeSelf is false at the top level.
	weapons := entities.NewCategory(1, "weapons")
	swords := entities.NewCategory(2, "swords", weapons)

	assert.True(t, weapons.Contains(swords, false))
}

func TestCategory_ContainsAcrossBranches(t *testing.T) {
	// weapons and shields are siblings; neither contains the other's child
	weapons := entities.NewCategory(1, "weapons")
	shields := entities.NewCategory(2, "shields")
	swords := entities.NewCategory(3, "swords", weapons)
	bucklers := entities.NewCategory(4, "bucklers", shields)

	assert.False(t, weapons.Contains(bucklers, true))
	assert.False(t, shields.Contains(swords, true))
}

func TestCategory_MultiParent(t *testing.T) {
	weapons := entities.NewCategory(1, "weapons")
	magical := entities.NewCategory(2, "magical")
	flameblade := entities.NewCategory(3, "flameblade", weapons, magical)

	assert.True(t, weapons.Contains(flameblade, true))
	assert.True(t, magical.Contains(flameblade, true))
}

func TestMergeCategories(t *testing.T) {
	weapons := entities.NewCategory(1, "weapons")
	thrown := entities.NewCategory(2, "thrown")

	merged := entities.MergeCategories(7, "weapons+thrown", []*entities.Category{weapons, thrown})

	assert.Negative(t, merged.ID)
	assert.True(t, weapons.Contains(merged, true))
	assert.True(t, thrown.Contains(merged, true))
	assert.False(t, merged.Contains(weapons, true))
}

func TestCategory_ContainsNil(t *testing.T) {
	weapons := entities.NewCategory(1, "weapons")

	assert.False(t, weapons.Contains(nil, true))
	assert.False(t, (*entities.Category)(nil).Contains(weapons, true))
}
