package liststore

import (
	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

// CreateList appends an empty list, makes it active and returns its id.
func (s *Store) CreateList(name string) string {
	if name == "" {
		name = NewListName
	}

	s.mu.Lock()
	l := s.newList(name)
	s.lists = append(s.lists, l)
	s.activeID = l.ID
	s.commit(Event{Kind: EventCreated, ListID: l.ID})
	return l.ID
}

// CreateListWithItems is CreateList pre-populated with unchecked,
// uncategorized entries. Non-positive quantities are skipped and a repeated
// item id keeps its last quantity.
func (s *Store) CreateListWithItems(name string, items []model.ItemQuantity) string {
	if name == "" {
		name = NewListName
	}

	s.mu.Lock()
	l := s.newList(name)
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if existing := l.Item(it.ItemID); existing != nil {
			existing.Quantity = it.Quantity
			continue
		}
		l.Items = append(l.Items, model.ItemEntry{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	s.lists = append(s.lists, l)
	s.activeID = l.ID
	s.commit(Event{Kind: EventCreated, ListID: l.ID})
	return l.ID
}

// DeleteList removes a list. Deleting the active list activates the first
// remaining one; deleting the last list replaces it with a fresh default list.
func (s *Store) DeleteList(listID string) {
	s.mu.Lock()
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		return
	}

	s.lists = append(s.lists[:i], s.lists[i+1:]...)
	events := []Event{{Kind: EventDeleted, ListID: listID}}

	if s.importedID == listID {
		s.importedID = ""
	}

	switch {
	case len(s.lists) == 0:
		l := s.newList(model.DefaultListName)
		s.lists = append(s.lists, l)
		s.activeID = l.ID
		events = append(events, Event{Kind: EventCreated, ListID: l.ID})
	case s.activeID == listID:
		s.activeID = s.lists[0].ID
		events = append(events, Event{Kind: EventActivated, ListID: s.activeID})
	}
	s.commit(events...)
}

func (s *Store) UpdateListName(listID, name string) error {
	s.mu.Lock()
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		return ErrListNotFound
	}
	s.lists[i].Name = name
	s.touch(&s.lists[i])
	s.commit(Event{Kind: EventUpdated, ListID: listID})
	return nil
}

// UpdateQuantity sets an item's quantity on the active list. A quantity of
// zero or less removes the entry. phase only applies when the entry is created.
func (s *Store) UpdateQuantity(itemID, quantity int, phase *int) {
	s.mu.Lock()
	l := s.activeLocked()
	if l == nil {
		s.mu.Unlock()
		return
	}

	existing := l.Item(itemID)
	switch {
	case quantity <= 0:
		if existing == nil {
			s.mu.Unlock()
			return
		}
		l.Items = removeItems(l.Items, func(e model.ItemEntry) bool { return e.ItemID == itemID })
	case existing != nil:
		existing.Quantity = quantity
	default:
		entry := model.ItemEntry{ItemID: itemID, Quantity: quantity}
		if phase != nil {
			entry.Phase = model.PhasePtr(*phase)
		}
		l.Items = append(l.Items, entry)
	}
	s.touch(l)
	s.commit(Event{Kind: EventUpdated, ListID: l.ID})
}

func (s *Store) ToggleCheck(itemID int) {
	s.mu.Lock()
	l := s.activeLocked()
	if l == nil {
		s.mu.Unlock()
		return
	}
	entry := l.Item(itemID)
	if entry == nil {
		s.mu.Unlock()
		return
	}
	entry.Checked = !entry.Checked
	s.touch(l)
	s.commit(Event{Kind: EventUpdated, ListID: l.ID})
}

// ClearChecked removes every checked entry from the active list and reports
// how many were removed.
func (s *Store) ClearChecked() int {
	s.mu.Lock()
	l := s.activeLocked()
	if l == nil {
		s.mu.Unlock()
		return 0
	}
	before := len(l.Items)
	l.Items = removeItems(l.Items, func(e model.ItemEntry) bool { return e.Checked })
	removed := before - len(l.Items)
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.touch(l)
	s.commit(Event{Kind: EventUpdated, ListID: l.ID})
	return removed
}

// AddCategory adds a category to the active list. Without an explicit phase
// it takes one past the highest existing phase.
func (s *Store) AddCategory(name string, phase *int) (model.Category, bool) {
	s.mu.Lock()
	l := s.activeLocked()
	if l == nil {
		s.mu.Unlock()
		return model.Category{}, false
	}

	c := model.Category{ID: s.newCategoryID(), Name: name}
	if phase != nil {
		c.Phase = *phase
	} else {
		c.Phase = nextPhase(l.Categories)
	}
	l.Categories = append(l.Categories, c)
	s.touch(l)
	s.commit(Event{Kind: EventUpdated, ListID: l.ID})
	return c, true
}

func (s *Store) RenameCategory(categoryID, name string) {
	s.mu.Lock()
	l := s.activeLocked()
	if l == nil {
		s.mu.Unlock()
		return
	}
	for i := range l.Categories {
		if l.Categories[i].ID == categoryID {
			l.Categories[i].Name = name
			s.touch(l)
			s.commit(Event{Kind: EventUpdated, ListID: l.ID})
			return
		}
	}
	s.mu.Unlock()
}

// DeleteCategory removes a category from the active list. Entries in its
// phase stay on the list, uncategorized.
func (s *Store) DeleteCategory(categoryID string) {
	s.mu.Lock()
	l := s.activeLocked()
	if l == nil {
		s.mu.Unlock()
		return
	}

	idx := -1
	for i := range l.Categories {
		if l.Categories[i].ID == categoryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	phase := l.Categories[idx].Phase
	l.Categories = append(l.Categories[:idx], l.Categories[idx+1:]...)
	for i := range l.Items {
		if l.Items[i].Phase != nil && *l.Items[i].Phase == phase {
			l.Items[i].Phase = nil
		}
	}
	s.touch(l)
	s.commit(Event{Kind: EventUpdated, ListID: l.ID})
}

// MoveItemToPhase reassigns an entry on the active list; nil uncategorizes it.
func (s *Store) MoveItemToPhase(itemID int, phase *int) {
	s.mu.Lock()
	l := s.activeLocked()
	if l == nil {
		s.mu.Unlock()
		return
	}
	entry := l.Item(itemID)
	if entry == nil {
		s.mu.Unlock()
		return
	}
	if phase == nil {
		entry.Phase = nil
	} else {
		entry.Phase = model.PhasePtr(*phase)
	}
	s.touch(l)
	s.commit(Event{Kind: EventUpdated, ListID: l.ID})
}

func nextPhase(categories []model.Category) int {
	highest := 0
	for _, c := range categories {
		if c.Phase > highest {
			highest = c.Phase
		}
	}
	return highest + 1
}

func removeItems(items []model.ItemEntry, drop func(model.ItemEntry) bool) []model.ItemEntry {
	kept := items[:0]
	for _, item := range items {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	return kept
}
