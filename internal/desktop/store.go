package desktop

import "sort"

// Store is the ordered collection of live window records, kept in creation
// order. Only the Manager mutates it.
type Store struct {
	records []WindowRecord
}

func (s *Store) index(id ID) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) get(id ID) *WindowRecord {
	if i := s.index(id); i >= 0 {
		return &s.records[i]
	}
	return nil
}

func (s *Store) insert(r WindowRecord) {
	s.records = append(s.records, r)
}

func (s *Store) remove(id ID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return true
}

func (s *Store) maxZ() int {
	max := 0
	for _, r := range s.records {
		if r.ZOrder > max {
			max = r.ZOrder
		}
	}
	return max
}

// activate marks id active and every other record inactive.
func (s *Store) activate(id ID) {
	for i := range s.records {
		s.records[i].Active = s.records[i].ID == id
	}
}

// Len returns the number of live records.
func (s *Store) Len() int { return len(s.records) }

// All returns a copy of the records in creation order.
func (s *Store) All() []WindowRecord {
	out := make([]WindowRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.clone()
	}
	return out
}

// ByZOrder returns a copy of the records from bottom-most to top-most.
func (s *Store) ByZOrder() []WindowRecord {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZOrder < out[j].ZOrder
	})
	return out
}
