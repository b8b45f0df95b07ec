package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
slot_count: 2
update_mode: immediate

categories:
  - id: 1
    name: weapons
  - id: 2
    name: swords
    parents: [weapons]
  - id: 3
    name: shields

items:
  - id: 10
    name: Sword
    capacity: 1
    categories: [swords]
  - id: 11
    name: Shield
    capacity: 1
    categories: [shields]
  - id: 13
    name: Cursed Blade
    capacity: 1
    categories: [swords]

groups:
  - category: weapons
    rules:
      - state: "Equip {0}"
        default: true
        slots:
          - slot: 0
            category: weapons
            exceptions: [Cursed Blade]
          - slot: 1
            category: shields
            nullable: true
`

func TestLoad(t *testing.T) {
	doc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 2, doc.SlotCount)
	assert.Equal(t, "immediate", doc.UpdateMode)
	assert.Len(t, doc.Categories, 3)
	assert.Equal(t, []string{"weapons"}, doc.Categories[1].Parents)
	assert.Len(t, doc.Items, 3)
	require.Len(t, doc.Groups, 1)

	rule := doc.Groups[0].Rules[0]
	assert.True(t, rule.Default)
	assert.False(t, rule.Disabled)
	require.Len(t, rule.Slots, 2)
	assert.Equal(t, []string{"Cursed Blade"}, rule.Slots[0].Exceptions)
	assert.True(t, rule.Slots[1].Nullable)
}

func TestLoad_RejectsInvalidDocument(t *testing.T) {
	_, err := Load(strings.NewReader("update_mode: immediate"))
	require.Error(t, err, "slot_count is required")

	_, err = Load(strings.NewReader("slot_count: 2\nupdate_mode: sometimes"))
	require.Error(t, err)

	_, err = Load(strings.NewReader("slot_count: 2\nitems:\n  - id: 1"))
	require.Error(t, err, "items need names")
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("slot_count: 2\nslotcount: 3"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equipset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.SlotCount)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuild_NilDocument(t *testing.T) {
	_, err := Build(nil, nil)
	require.Error(t, err)
}

func TestBuild_EndToEnd(t *testing.T) {
	doc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	engine, err := Build(doc, nil)
	require.NoError(t, err)

	weapons := engine.Category("weapons")
	require.NotNil(t, weapons)
	sword := engine.Item("Sword")
	require.NotNil(t, sword)
	assert.True(t, sword.InCategory(weapons), "membership resolves through the parent chain")

	group := engine.Manager.GroupForCategory(weapons)
	require.NotNil(t, group)

	// immediate mode resolves on pickup; the nullable shield slot means a
	// lone sword already forms a set, and the default auto-equips
	_, err = engine.Store.Pickup(sword, 0, 1)
	require.NoError(t, err)
	require.Len(t, group.ItemSets(), 1)
	assert.Equal(t, "Equip Sword", group.ItemSetAt(0).State())
	assert.Equal(t, 0, group.ActiveIndex())

	_, err = engine.Store.Pickup(engine.Item("Shield"), 1, 1)
	require.NoError(t, err)
	assert.NotNil(t, engine.Manager.ItemSetByLabel("Equip Sword Shield"))

	// the exception keeps the cursed blade out of every generated set
	_, err = engine.Store.Pickup(engine.Item("Cursed Blade"), 0, 1)
	require.NoError(t, err)
	assert.Nil(t, engine.Manager.ItemSetByLabel("Equip Cursed Blade Shield"))
	assert.Nil(t, engine.Manager.ItemSetByLabel("Equip Cursed Blade"))
}

func TestBuild_DegradesMissingReferences(t *testing.T) {
	doc, err := Load(strings.NewReader(`
slot_count: 1
items:
  - id: 20
    name: Orphan
    categories: [mystery]
groups:
  - category: gear
    rules:
      - state: "Use {0}"
        default: true
        slots:
          - slot: 0
            category: mystery
          - slot: 9
            category: mystery
`))
	require.NoError(t, err)

	engine, err := Build(doc, nil)
	require.NoError(t, err)

	// unknown references never fail the build
	assert.Nil(t, engine.Category("mystery"))
	orphan := engine.Item("Orphan")
	require.NotNil(t, orphan)

	group := engine.Manager.GroupAt(0)
	require.NotNil(t, group)
	require.Len(t, group.Rules(), 1)

	// the item and the rule slot degraded to the same fallback category, so
	// the configuration stays playable; the out-of-range slot was dropped
	_, err = engine.Store.Pickup(orphan, 0, 1)
	require.NoError(t, err)
	require.Len(t, group.ItemSets(), 1)
	assert.Equal(t, "Use Orphan", group.ItemSetAt(0).State())
}

func TestBuild_MergedMemberships(t *testing.T) {
	doc, err := Load(strings.NewReader(`
slot_count: 1
categories:
  - id: 1
    name: weapons
  - id: 5
    name: tools
items:
  - id: 30
    name: Multitool
    categories: [weapons, tools]
`))
	require.NoError(t, err)

	engine, err := Build(doc, nil)
	require.NoError(t, err)

	multitool := engine.Item("Multitool")
	require.NotNil(t, multitool)
	require.Len(t, multitool.Categories, 1, "memberships collapse to one merged node")
	assert.Negative(t, multitool.Categories[0].ID)
	assert.True(t, multitool.InCategory(engine.Category("weapons")))
	assert.True(t, multitool.InCategory(engine.Category("tools")))
}

func TestEngine_Items(t *testing.T) {
	doc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	engine, err := Build(doc, nil)
	require.NoError(t, err)

	items := engine.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Sword", items[0].Name)
	assert.Equal(t, "Shield", items[1].Name)
	assert.Equal(t, "Cursed Blade", items[2].Name)

	assert.Nil(t, engine.Item("No Such Item"))
}
