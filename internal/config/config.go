// Package config loads the declarative equip-set configuration: slot count,
// update mode, category hierarchy, item definitions, and per-group rule
// declarations. Documents are plain YAML loaded once at startup; references
// are by name and degrade to synthesized fallbacks instead of failing, so a
// partially misconfigured character stays playable.
package config

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/equipset/internal/entities"
	"github.com/KirkDiggler/equipset/internal/errors"
	"github.com/KirkDiggler/equipset/internal/inventory"
	"github.com/KirkDiggler/equipset/internal/pkg/idgen"
	"github.com/KirkDiggler/equipset/internal/resolution"
)

// Document is the root of an equip-set configuration file
type Document struct {
	SlotCount  int           `yaml:"slot_count"`
	UpdateMode string        `yaml:"update_mode"`
	Categories []CategoryDoc `yaml:"categories"`
	Items      []ItemDoc     `yaml:"items"`
	Groups     []GroupDoc    `yaml:"groups"`
}

// CategoryDoc declares one category node
type CategoryDoc struct {
	ID      int32    `yaml:"id"`
	Name    string   `yaml:"name"`
	Parents []string `yaml:"parents"`
}

// ItemDoc declares one item definition
type ItemDoc struct {
	ID         int32    `yaml:"id"`
	Name       string   `yaml:"name"`
	Capacity   int      `yaml:"capacity"`
	Categories []string `yaml:"categories"`
}

// GroupDoc declares one item set group
type GroupDoc struct {
	Category string    `yaml:"category"`
	Rules    []RuleDoc `yaml:"rules"`
}

// RuleDoc declares one rule inside a group
type RuleDoc struct {
	State       string    `yaml:"state"`
	Default     bool      `yaml:"default"`
	Disabled    bool      `yaml:"disabled"`
	ExactAmount bool      `yaml:"exact_amount"`
	Slots       []SlotDoc `yaml:"slots"`
}

// SlotDoc declares one per-slot requirement of a rule
type SlotDoc struct {
	Slot       int      `yaml:"slot"`
	Category   string   `yaml:"category"`
	Nullable   bool     `yaml:"nullable"`
	Exceptions []string `yaml:"exceptions"`
}

// Load decodes a configuration document
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile decodes a configuration document from a file
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path) // #nosec G304 -- configuration path comes from the operator
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open configuration %s", path)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Validate checks the structurally fatal parts of a document. Reference
// errors are not fatal; Build degrades them with diagnostics.
func (d *Document) Validate() error {
	vb := errors.NewValidationBuilder()

	if d.SlotCount <= 0 {
		vb.InvalidField("slot_count", "must be positive")
	}
	switch strings.ToLower(d.UpdateMode) {
	case "", "immediate", "scheduled", "manual":
	default:
		vb.InvalidField("update_mode", "must be immediate, scheduled, or manual")
	}
	for _, cat := range d.Categories {
		if cat.Name == "" {
			vb.RequiredField("categories.name")
		}
	}
	for _, item := range d.Items {
		if item.Name == "" {
			vb.RequiredField("items.name")
		}
	}

	return vb.Build()
}

func (d *Document) updateMode() resolution.UpdateMode {
	switch strings.ToLower(d.UpdateMode) {
	case "scheduled":
		return resolution.UpdateScheduled
	case "manual":
		return resolution.UpdateManual
	default:
		return resolution.UpdateImmediate
	}
}

// BuildConfig holds optional dependencies for Build
type BuildConfig struct {
	// Coordinator receives transition requests; nil completes transitions
	// synchronously inside the manager
	Coordinator resolution.TransitionCoordinator

	// InstanceIDs and SetIDs default to UUID generators
	InstanceIDs idgen.Generator
	SetIDs      idgen.Generator
}

// Engine bundles the constructed store and manager with name lookups for
// the loaded definitions
type Engine struct {
	Store   *inventory.Store
	Manager *resolution.Manager

	categories map[string]*entities.Category
	items      map[string]*entities.Item
	fallback   *entities.Category
}

// fallbackCategoryID sits outside configured ID space, like merged nodes
const fallbackCategoryID = -1

// Build constructs the store, the categories, the item definitions, and the
// manager with its groups and rules from a validated document
func Build(doc *Document, cfg *BuildConfig) (*Engine, error) {
	if doc == nil {
		return nil, errors.InvalidArgument("document is required")
	}
	if cfg == nil {
		cfg = &BuildConfig{}
	}
	instanceIDs := cfg.InstanceIDs
	if instanceIDs == nil {
		instanceIDs = idgen.NewUUID("inst")
	}
	setIDs := cfg.SetIDs
	if setIDs == nil {
		setIDs = idgen.NewUUID("set")
	}

	store, err := inventory.NewStore(&inventory.Config{
		SlotCount:   doc.SlotCount,
		IDGenerator: instanceIDs,
	})
	if err != nil {
		return nil, err
	}

	manager, err := resolution.NewManager(&resolution.Config{
		Store:       store,
		Coordinator: cfg.Coordinator,
		IDGenerator: setIDs,
		UpdateMode:  doc.updateMode(),
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Store:      store,
		Manager:    manager,
		categories: make(map[string]*entities.Category, len(doc.Categories)),
		items:      make(map[string]*entities.Item, len(doc.Items)),
		fallback:   entities.NewCategory(fallbackCategoryID, "uncategorized"),
	}

	e.buildCategories(doc.Categories)
	e.buildItems(doc.Items)
	e.buildGroups(doc)
	return e, nil
}

// buildCategories creates every node first, then links parents, so forward
// references work regardless of declaration order
func (e *Engine) buildCategories(docs []CategoryDoc) {
	for _, doc := range docs {
		if _, exists := e.categories[doc.Name]; exists {
			slog.Warn("duplicate category declaration ignored", "category", doc.Name)
			continue
		}
		e.categories[doc.Name] = entities.NewCategory(doc.ID, doc.Name)
	}
	for _, doc := range docs {
		cat := e.categories[doc.Name]
		for _, parentName := range doc.Parents {
			parent, ok := e.categories[parentName]
			if !ok {
				slog.Warn("category references unknown parent",
					"category", doc.Name,
					"parent", parentName,
				)
				continue
			}
			cat.Parents = append(cat.Parents, parent)
		}
	}
}

func (e *Engine) buildItems(docs []ItemDoc) {
	for _, doc := range docs {
		if _, exists := e.items[doc.Name]; exists {
			slog.Warn("duplicate item declaration ignored", "item", doc.Name)
			continue
		}

		memberships := make([]*entities.Category, 0, len(doc.Categories))
		for _, name := range doc.Categories {
			cat, ok := e.categories[name]
			if !ok {
				slog.Warn("item references unknown category, using fallback",
					"item", doc.Name,
					"category", name,
				)
				cat = e.fallback
			}
			memberships = append(memberships, cat)
		}

		item := entities.NewItem(doc.ID, doc.Name, doc.Capacity)
		switch len(memberships) {
		case 0:
		case 1:
			item.Categories = memberships
		default:
			// one transient multi-parent node stands in for all memberships
			merged := entities.MergeCategories(doc.ID, doc.Name+"-memberships", memberships)
			item.Categories = []*entities.Category{merged}
		}
		e.items[doc.Name] = item
	}
}

func (e *Engine) buildGroups(doc *Document) {
	for _, groupDoc := range doc.Groups {
		category, ok := e.categories[groupDoc.Category]
		if !ok {
			slog.Warn("group references unknown category, using fallback",
				"category", groupDoc.Category,
			)
			category = e.fallback
		}

		rules := make([]*resolution.Rule, 0, len(groupDoc.Rules))
		for _, ruleDoc := range groupDoc.Rules {
			rule, err := e.buildRule(doc.SlotCount, ruleDoc)
			if err != nil {
				// a broken rule degrades to zero item sets, never a fault
				slog.Warn("skipping invalid rule",
					"category", groupDoc.Category,
					"state", ruleDoc.State,
					"error", err,
				)
				continue
			}
			rules = append(rules, rule)
		}

		e.Manager.AddGroup(category, rules...)
	}
}

func (e *Engine) buildRule(slotCount int, doc RuleDoc) (*resolution.Rule, error) {
	requirements := make([]resolution.SlotRequirement, 0, len(doc.Slots))
	for _, slotDoc := range doc.Slots {
		if slotDoc.Slot < 0 || slotDoc.Slot >= slotCount {
			slog.Warn("rule slot out of range, dropping requirement",
				"state", doc.State,
				"slot", slotDoc.Slot,
			)
			continue
		}

		category, ok := e.categories[slotDoc.Category]
		if !ok {
			slog.Warn("rule slot references unknown category, using fallback",
				"state", doc.State,
				"category", slotDoc.Category,
			)
			category = e.fallback
		}

		exceptions := make([]*entities.Item, 0, len(slotDoc.Exceptions))
		for _, name := range slotDoc.Exceptions {
			item, ok := e.items[name]
			if !ok {
				slog.Warn("rule exception references unknown item",
					"state", doc.State,
					"item", name,
				)
				continue
			}
			exceptions = append(exceptions, item)
		}

		requirements = append(requirements, resolution.SlotRequirement{
			Slot:       slotDoc.Slot,
			Category:   category,
			Nullable:   slotDoc.Nullable,
			Exceptions: exceptions,
		})
	}

	return resolution.NewRule(&resolution.RuleConfig{
		StateTemplate: doc.State,
		SlotCount:     slotCount,
		Requirements:  requirements,
		Default:       doc.Default,
		Enabled:       !doc.Disabled,
		ExactAmount:   doc.ExactAmount,
	})
}

// Category looks up a configured category by name, nil on a miss
func (e *Engine) Category(name string) *entities.Category {
	return e.categories[name]
}

// Item looks up a configured item definition by name, nil on a miss
func (e *Engine) Item(name string) *entities.Item {
	return e.items[name]
}

// Items returns every configured item definition ordered by ID
func (e *Engine) Items() []*entities.Item {
	items := make([]*entities.Item, 0, len(e.items))
	for _, item := range e.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}
