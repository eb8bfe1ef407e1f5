package model

import "time"

// DefaultListName is used for the list created when the store would otherwise be empty.
const DefaultListName = "My Loadout"

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phase int    `json:"phase"`
}

// ItemEntry references an item in the external catalog by id. A nil Phase
// means the entry is uncategorized.
type ItemEntry struct {
	ItemID   int  `json:"itemId"`
	Quantity int  `json:"quantity"`
	Checked  bool `json:"checked"`
	Phase    *int `json:"phase,omitempty"`
}

type List struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Items      []ItemEntry `json:"items"`
	Categories []Category  `json:"categories"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Item returns the entry for itemID, or nil when the list does not hold it.
func (l *List) Item(itemID int) *ItemEntry {
	for i := range l.Items {
		if l.Items[i].ItemID == itemID {
			return &l.Items[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	dup := l
	dup.Items = CloneItems(l.Items)
	dup.Categories = CloneCategories(l.Categories)
	return dup
}

func CloneItems(items []ItemEntry) []ItemEntry {
	dup := make([]ItemEntry, len(items))
	for i, item := range items {
		dup[i] = item
		if item.Phase != nil {
			dup[i].Phase = PhasePtr(*item.Phase)
		}
	}
	return dup
}

func CloneCategories(categories []Category) []Category {
	dup := make([]Category, len(categories))
	copy(dup, categories)
	return dup
}

// PhasePtr returns a pointer to a copy of phase.
func PhasePtr(phase int) *int {
	return &phase
}

// ItemQuantity is an {itemId, quantity} pair used to seed a new list.
type ItemQuantity struct {
	ItemID   int `json:"item_id" validate:"gte=0"`
	Quantity int `json:"quantity" validate:"gte=0"`
}
