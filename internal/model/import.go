package model

// PendingImport holds a decoded shared list whose name collides with an
// existing list. It is never persisted.
type PendingImport struct {
	Name           string      `json:"name"`
	Items          []ItemEntry `json:"items"`
	Categories     []Category  `json:"categories"`
	ExistingListID string      `json:"existingListId"`
}

func (p PendingImport) Clone() PendingImport {
	dup := p
	dup.Items = CloneItems(p.Items)
	dup.Categories = CloneCategories(p.Categories)
	return dup
}

type PresetItem struct {
	ID       int `json:"id" validate:"gte=0"`
	Quantity int `json:"quantity" validate:"gte=0"`
	Phase    int `json:"phase"`
}

// Preset is an externally authored template used to seed a new list.
type Preset struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Items       []PresetItem `json:"items" validate:"required,dive"`
}

// PresetFile is one entry of the preset catalog index.
type PresetFile struct {
	Filename    string `json:"filename"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// ExportFile is the downloadable form of a list. It reads back as a Preset.
type ExportFile struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"Category"`
	Items       []PresetItem `json:"items"`
}
