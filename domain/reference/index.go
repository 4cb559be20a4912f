package reference

import (
	"salondesk/domain/ticket"
)

// Set is a pair of identifier sets built from one reference list
type Set struct {
	CIDs   map[string]struct{}
	Phones map[string]struct{}
}

// NewSet builds identifier sets from cleaned entries, skipping blanks
func NewSet(entries []Entry) Set {
	s := Set{CIDs: make(map[string]struct{}), Phones: make(map[string]struct{})}
	for _, e := range entries {
		if e.CID != "" {
			s.CIDs[e.CID] = struct{}{}
		}
		if e.Phone != "" {
			s.Phones[e.Phone] = struct{}{}
		}
	}
	return s
}

// Contains reports whether either identifier is in the set. Empty identifiers never match.
func (s Set) Contains(cid, phone string) bool {
	if cid != "" {
		if _, ok := s.CIDs[cid]; ok {
			return true
		}
	}
	if phone != "" {
		if _, ok := s.Phones[phone]; ok {
			return true
		}
	}
	return false
}

// Size returns the number of distinct identifiers
func (s Set) Size() int {
	return len(s.CIDs) + len(s.Phones)
}

// Index answers whether a ticket's salon is on the training or 16-digit lists
type Index struct {
	Training  Set
	Digits16  Set
	Contact   Set
	SalonsCID map[string]string
}

// NewIndex builds an index from entries grouped by list name
func NewIndex(lists map[string][]Entry, salons []Salon) *Index {
	idx := &Index{
		Training:  NewSet(lists[ListTraining]),
		Digits16:  NewSet(lists[List16Digits]),
		Contact:   NewSet(lists[ListContact]),
		SalonsCID: make(map[string]string, len(salons)),
	}
	for _, s := range salons {
		idx.SalonsCID[s.CID] = s.Name
	}
	return idx
}

// Annotate sets the reconciliation flags on a ticket. A nil index clears them.
func (idx *Index) Annotate(t *ticket.Ticket) {
	if idx == nil {
		t.InTraining = false
		t.Has16Digits = false
		return
	}
	cid := CleanIdentifier(t.CID)
	phone := CleanIdentifier(t.Phone)
	t.InTraining = idx.Training.Contains(cid, phone)
	t.Has16Digits = idx.Digits16.Contains(cid, phone)
}

// AnnotateAll applies Annotate to every ticket in place
func (idx *Index) AnnotateAll(tickets []ticket.Ticket) {
	for i := range tickets {
		idx.Annotate(&tickets[i])
	}
}

// SalonName looks up the master list name for a CID
func (idx *Index) SalonName(cid string) (string, bool) {
	if idx == nil {
		return "", false
	}
	name, ok := idx.SalonsCID[CleanIdentifier(cid)]
	return name, ok
}
