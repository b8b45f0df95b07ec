package resolution

import (
	"github.com/KirkDiggler/equipset/internal/entities"
	"github.com/KirkDiggler/equipset/internal/errors"
)

// SlotRequirement is the per-slot predicate of a rule: the slot must hold an
// item inside Category, excluding Exceptions. A nil Category means the slot
// must stay empty. Nullable slots accept empty in addition to any match.
type SlotRequirement struct {
	Slot       int
	Category   *entities.Category
	Exceptions []*entities.Item
	Nullable   bool
}

// RuleConfig declares a rule. Requirements are sparse by slot index; slots
// without a requirement must stay empty.
type RuleConfig struct {
	// StateTemplate is the label applied to generated sets. A {0}
	// placeholder is replaced with the slot-ordered item names.
	StateTemplate string

	// SlotCount must equal the owning store's slot count
	SlotCount int

	Requirements []SlotRequirement

	// Default marks the rule's sets as group-default candidates
	Default bool

	// Enabled is the initial enabled flag of generated sets
	Enabled bool

	// ExactAmount additionally requires, at validity-check time, that the
	// store's total quantity of every referenced item equals the number of
	// times the set consumes it
	ExactAmount bool
}

// Validate checks the declaration
func (c *RuleConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SlotCount <= 0 {
		vb.InvalidField("SlotCount", "must be positive")
	}
	for _, req := range c.Requirements {
		if req.Slot < 0 || req.Slot >= c.SlotCount {
			vb.Fieldf("Requirements", "slot %d out of range [0,%d)", req.Slot, c.SlotCount)
		}
	}

	return vb.Build()
}

// Rule is a declarative per-slot predicate plus the permutation generator
// that turns current store contents into candidate item sets. Configuration
// is immutable after construction; the candidate pool is reusable scratch
// state for generation.
type Rule struct {
	stateTemplate string
	slotCount     int
	requirements  []*SlotRequirement
	isDefault     bool
	enabled       bool
	exactAmount   bool

	// scratch pool of candidate arrays reused across generations
	scratch []*candidate
}

// NewRule creates a rule from its declaration
func NewRule(cfg *RuleConfig) (*Rule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid rule config")
	}

	r := &Rule{
		stateTemplate: cfg.StateTemplate,
		slotCount:     cfg.SlotCount,
		requirements:  make([]*SlotRequirement, cfg.SlotCount),
		isDefault:     cfg.Default,
		enabled:       cfg.Enabled,
		exactAmount:   cfg.ExactAmount,
	}
	for i := range cfg.Requirements {
		req := cfg.Requirements[i]
		r.requirements[req.Slot] = &req
	}
	return r, nil
}

// StateTemplate returns the configured label template
func (r *Rule) StateTemplate() string {
	return r.stateTemplate
}

// Default reports whether the rule marks its sets as default candidates
func (r *Rule) Default() bool {
	return r.isDefault
}

// candidate is one permutation under construction
type candidate struct {
	items []*entities.Item
}

func (r *Rule) checkout() *candidate {
	if n := len(r.scratch); n > 0 {
		c := r.scratch[n-1]
		r.scratch = r.scratch[:n-1]
		for i := range c.items {
			c.items[i] = nil
		}
		return c
	}
	return &candidate{items: make([]*entities.Item, r.slotCount)}
}

func (r *Rule) checkin(c *candidate) {
	r.scratch = append(r.scratch, c)
}

// matchesSlot applies the per-slot predicate
func (r *Rule) matchesSlot(req *SlotRequirement, item *entities.Item) bool {
	if req == nil || req.Category == nil || item == nil {
		return false
	}
	for _, exception := range req.Exceptions {
		if exception == item {
			return false
		}
	}
	return item.InCategory(req.Category)
}

// generate produces every maximal, non-redundant per-slot assignment
// satisfying the rule's predicates against the slot-indexed snapshot.
//
// Slots are processed left to right on the current permutation. A nullable
// slot first forks an empty-slot branch which recurses independently. The
// first predicate match fills the current permutation in place; every
// further match forks a copy of the prefix and recurses. A non-nullable
// slot with zero matches prunes the whole branch.
func (r *Rule) generate(slotItems [][]*entities.Item) []*candidate {
	results := make([]*candidate, 0, 4)
	seed := r.checkout()
	results = append(results, seed)
	r.fill(&results, seed, 0, slotItems)
	return results
}

func (r *Rule) fill(results *[]*candidate, cur *candidate, startSlot int, slotItems [][]*entities.Item) {
	for slot := startSlot; slot < r.slotCount; slot++ {
		req := r.requirements[slot]
		if req == nil || req.Category == nil {
			// unconstrained slot stays empty
			continue
		}

		if req.Nullable {
			fork := r.forkPrefix(cur, slot)
			*results = append(*results, fork)
			r.fill(results, fork, slot+1, slotItems)
		}

		matched := false
		var available []*entities.Item
		if slot < len(slotItems) {
			available = slotItems[slot]
		}
		for _, item := range available {
			if !r.matchesSlot(req, item) {
				continue
			}
			if !matched {
				cur.items[slot] = item
				matched = true
				continue
			}
			fork := r.forkPrefix(cur, slot)
			fork.items[slot] = item
			*results = append(*results, fork)
			r.fill(results, fork, slot+1, slotItems)
		}

		if !matched {
			// zero options for this slot: the branch cannot complete.
			// Nullable slots already forked their empty continuation.
			r.discard(results, cur)
			return
		}
	}
}

// forkPrefix copies the permutation up to but excluding slot; the caller
// sets the forked slot itself
func (r *Rule) forkPrefix(cur *candidate, slot int) *candidate {
	fork := r.checkout()
	copy(fork.items[:slot], cur.items[:slot])
	return fork
}

func (r *Rule) discard(results *[]*candidate, cur *candidate) {
	list := *results
	for i, c := range list {
		if c == cur {
			*results = append(list[:i], list[i+1:]...)
			r.checkin(cur)
			return
		}
	}
}

// changeOp classifies one entry of a resolution pass
type changeOp int

const (
	opKeep changeOp = iota
	opAdd
	opRemove
)

// change is one classified item set from a rule's resolution pass
type change struct {
	op  changeOp
	set *ItemSet
}

// setFactory abstracts the manager's pool for the rule: checkout of a
// pooled or fresh instance registered against this rule
type setFactory interface {
	acquire(rule *Rule) *ItemSet
}

// resolve diffs the freshly generated permutations against the item sets
// this rule currently owns. Surviving sets come back as keeps in generation
// order, unmatched permutations as adds, and owned sets no permutation
// matched as removes (after all keeps and adds, so live-list positions are
// assigned before teardown).
func (r *Rule) resolve(slotItems [][]*entities.Item, owned []*ItemSet, factory setFactory) []change {
	perms := r.generate(slotItems)

	kept := make(map[*candidate]*ItemSet, len(owned))
	removed := make([]*ItemSet, 0)
	for _, set := range owned {
		match := r.findMatch(perms, set, kept)
		if match == nil {
			removed = append(removed, set)
			continue
		}
		kept[match] = set
	}

	changes := make([]change, 0, len(perms)+len(removed))
	for _, perm := range perms {
		if set, ok := kept[perm]; ok {
			changes = append(changes, change{op: opKeep, set: set})
		} else {
			set := factory.acquire(r)
			set.reset(perm.items, formatState(r.stateTemplate, perm.items))
			changes = append(changes, change{op: opAdd, set: set})
		}
		r.checkin(perm)
	}
	for _, set := range removed {
		changes = append(changes, change{op: opRemove, set: set})
	}
	return changes
}

func (r *Rule) findMatch(perms []*candidate, set *ItemSet, taken map[*candidate]*ItemSet) *candidate {
	for _, perm := range perms {
		if _, claimed := taken[perm]; claimed {
			continue
		}
		if set.Matches(perm.items) {
			return perm
		}
	}
	return nil
}

// quantitySource is the slice of the store the validity check needs
type quantitySource interface {
	Quantity(item *entities.Item) int
}

// isValid is the rule's own validity predicate. Without exact-amount
// validation every set passes; with it, surplus inventory beyond what the
// set consumes rejects the set.
func (r *Rule) isValid(set *ItemSet, quantities quantitySource) bool {
	if !r.exactAmount {
		return true
	}

	consumed := make(map[*entities.Item]int, len(set.items))
	for _, item := range set.items {
		if item != nil {
			consumed[item]++
		}
	}
	for item, count := range consumed {
		if quantities.Quantity(item) != count {
			return false
		}
	}
	return true
}
