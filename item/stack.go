package item

import (
	"fmt"
	"maps"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Stack represents a stack of items held in an inventory slot. Stacks are value types: any mutation of the
// tag bag produces a copy, so a Stack held by the combat core is a consistent snapshot.
type Stack struct {
	material string
	count    int

	data     map[string]any
	enchants map[string]int
}

// NewStack returns a new stack of the material passed with the count passed.
func NewStack(material string, count int) Stack {
	if count < 0 {
		count = 0
	}
	return Stack{material: material, count: count}
}

// Material returns the material identifier of the stack, for example "minecraft:diamond_sword".
func (s Stack) Material() string {
	return s.material
}

// Count returns the amount of items in the stack.
func (s Stack) Count() int {
	return s.count
}

// Empty checks if the stack is empty.
func (s Stack) Empty() bool {
	return s.material == "" || s.count == 0
}

// Value attempts to return a value set to the stack using Stack.WithValue.
func (s Stack) Value(key string) (any, bool) {
	val, ok := s.data[key]
	return val, ok
}

// WithValue returns a copy of the stack with a value attached under the key passed. The value must be one
// of the types supported by NBT serialization if the stack is to be persisted.
func (s Stack) WithValue(key string, val any) Stack {
	data := maps.Clone(s.data)
	if data == nil {
		data = map[string]any{}
	}
	data[key] = val
	s.data = data
	return s
}

// WithoutValue returns a copy of the stack with the value under the key passed removed.
func (s Stack) WithoutValue(key string) Stack {
	if _, ok := s.data[key]; !ok {
		return s
	}
	data := maps.Clone(s.data)
	delete(data, key)
	s.data = data
	return s
}

// Values returns a copy of the full tag bag of the stack.
func (s Stack) Values() map[string]any {
	return maps.Clone(s.data)
}

// Enchantment returns the level of the enchantment with the identifier passed, or 0 if the stack does not
// carry it.
func (s Stack) Enchantment(id string) int {
	return s.enchants[id]
}

// Enchantments returns a copy of all enchantments on the stack.
func (s Stack) Enchantments() map[string]int {
	return maps.Clone(s.enchants)
}

// WithEnchantment returns a copy of the stack with the enchantment passed applied at the level passed.
func (s Stack) WithEnchantment(id string, level int) Stack {
	enchants := maps.Clone(s.enchants)
	if enchants == nil {
		enchants = map[string]int{}
	}
	enchants[id] = level
	s.enchants = enchants
	return s
}

// SameItem reports if the two stacks are the same item: the same material with an identical tag bag.
// Enchantments deliberately do not participate, so re-enchanting a weapon does not make it a different
// item for damage replacement checks.
func SameItem(a, b Stack) bool {
	if a.material != b.material {
		return false
	}
	return a.bagHash() == b.bagHash()
}

// bagHash folds the tag bag into a single hash. Keys are visited in sorted order so that two bags with
// equal contents always produce equal hashes.
func (s Stack) bagHash() uint64 {
	if len(s.data) == 0 {
		return 0
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("=")
		_, _ = fmt.Fprintf(d, "%v", s.data[k])
		_, _ = d.WriteString(";")
	}
	return d.Sum64()
}
