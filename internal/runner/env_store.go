package runner

import (
	"sync"

	"github.com/elliotchance/orderedmap"
)

// Scope is the single persistent mapping shared by every code-cell run.
// It is created once with the engine, mutated only as a side effect of
// execution and cleared only by an explicit restart. Iteration order is
// insertion order, which keeps serialized environments deterministic
// across runs of the same document.
type Scope struct {
	mu     sync.RWMutex
	values *orderedmap.OrderedMap
}

func NewScope() *Scope {
	return &Scope{values: orderedmap.NewOrderedMap()}
}

func (s *Scope) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (s *Scope) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Set(name, value)
}

func (s *Scope) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Delete(name)
}

func (s *Scope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Len()
}

// Values returns the scope as NAME=VALUE pairs in assignment order.
func (s *Scope) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, s.values.Len())
	for el := s.values.Front(); el != nil; el = el.Next() {
		result = append(result, el.Key.(string)+"="+el.Value.(string))
	}
	return result
}

// Clear removes every binding. This is the restart path; the scope object
// itself lives as long as the engine.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = orderedmap.NewOrderedMap()
}
