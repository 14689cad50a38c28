package wheel

import "github.com/ha1tch/flavor-wheel/pkg/taxonomy"

// selection maps node id to the entry captured when it was clicked. It
// remembers insertion order so the most recent pick can be shown.
type selection struct {
	entries map[string]taxonomy.Entry
	order   []string
}

func newSelection() *selection {
	return &selection{entries: make(map[string]taxonomy.Entry)}
}

func (s *selection) has(id string) bool {
	_, ok := s.entries[id]
	return ok
}

func (s *selection) add(e taxonomy.Entry) {
	if s.has(e.ID) {
		s.entries[e.ID] = e
		return
	}
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)
}

func (s *selection) remove(id string) bool {
	if !s.has(id) {
		return false
	}
	delete(s.entries, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *selection) clear() {
	s.entries = make(map[string]taxonomy.Entry)
	s.order = nil
}

func (s *selection) len() int { return len(s.order) }

// snapshot returns copies of the entries in insertion order.
func (s *selection) snapshot() []taxonomy.Entry {
	out := make([]taxonomy.Entry, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		e.Label = e.Label.Clone()
		out = append(out, e)
	}
	return out
}

func (s *selection) last() (taxonomy.Entry, bool) {
	if len(s.order) == 0 {
		return taxonomy.Entry{}, false
	}
	return s.entries[s.order[len(s.order)-1]], true
}
