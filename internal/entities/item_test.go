package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/equipset/internal/entities"
)

func TestItem_InCategory(t *testing.T) {
	weapons := entities.NewCategory(1, "weapons")
	swords := entities.NewCategory(2, "swords", weapons)
	potions := entities.NewCategory(3, "potions")

	sword := entities.NewItem(10, "Sword", 1, swords)

	assert.True(t, sword.InCategory(swords))
	assert.True(t, sword.InCategory(weapons), "membership resolves through the parent chain")
	assert.False(t, sword.InCategory(potions))
}

func TestItem_InCategoryNoMemberships(t *testing.T) {
	weapons := entities.NewCategory(1, "weapons")
	rock := entities.NewItem(11, "Rock", 0)

	assert.False(t, rock.InCategory(weapons))
}

func TestItem_Unbounded(t *testing.T) {
	arrow := entities.NewItem(12, "Arrow", 0)
	sword := entities.NewItem(13, "Sword", 1)

	assert.True(t, arrow.Unbounded())
	assert.False(t, sword.Unbounded())
}

func TestItem_IdentifierEquality(t *testing.T) {
	// Two definitions with identical fields are still distinct identifiers
	a := entities.NewItem(14, "Sword", 1)
	b := entities.NewItem(14, "Sword", 1)

	assert.False(t, a == b)
	assert.True(t, a == a)
}
