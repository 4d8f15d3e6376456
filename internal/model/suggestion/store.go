package suggestion

// MaxVisible caps how many starter prompts are offered at once.
const MaxVisible = 3

// Store exposes starter prompt retrieval.
type Store interface {
	List() []Prompt
	FindByID(id string) (Prompt, bool)
}

// MemoryStore implements Store over a fixed slice.
type MemoryStore struct {
	items []Prompt
}

// NewMemoryStore returns a MemoryStore holding at most MaxVisible prompts.
func NewMemoryStore(items []Prompt) *MemoryStore {
	if len(items) > MaxVisible {
		items = items[:MaxVisible]
	}
	return &MemoryStore{items: append([]Prompt(nil), items...)}
}

// List returns a copy of the prompts.
func (s *MemoryStore) List() []Prompt {
	return append([]Prompt(nil), s.items...)
}

// FindByID looks up a prompt by identifier.
func (s *MemoryStore) FindByID(id string) (Prompt, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Prompt{}, false
}
