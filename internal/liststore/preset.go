package liststore

import (
	"context"
	"fmt"

	"github.com/bhi-elliot/ScrappyMart/internal/model"
	"github.com/bhi-elliot/ScrappyMart/internal/preset"
)

// PresetFetcher retrieves a preset by file name from the preset catalog.
type PresetFetcher interface {
	Fetch(ctx context.Context, filename string) (model.Preset, error)
}

// ImportPreset always creates a new, active list from p. One category named
// "Phase {n}" is derived per distinct item phase, in ascending order.
func (s *Store) ImportPreset(p model.Preset) (string, error) {
	if err := preset.Validate(p); err != nil {
		return "", err
	}

	s.mu.Lock()
	id := s.importPresetLocked(p)
	s.commit(Event{Kind: EventImported, ListID: id})
	return id, nil
}

// ImportPresetFrom fetches filename without holding the store lock, so other
// mutations proceed meanwhile. When several fetches overlap only the most
// recently started one is applied; the others return ErrPresetSuperseded.
func (s *Store) ImportPresetFrom(ctx context.Context, f PresetFetcher, filename string) (string, error) {
	gen := s.presetGen.Add(1)

	p, err := f.Fetch(ctx, filename)
	if err != nil {
		s.logger.Error("import preset", "preset", filename, "error", err)
		return "", fmt.Errorf("fetch preset %q: %w", filename, err)
	}
	if err := preset.Validate(p); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.presetGen.Load() != gen {
		s.mu.Unlock()
		s.logger.Info("preset import superseded", "preset", filename)
		return "", ErrPresetSuperseded
	}
	id := s.importPresetLocked(p)
	s.commit(Event{Kind: EventImported, ListID: id})
	return id, nil
}

func (s *Store) importPresetLocked(p model.Preset) string {
	name := p.Name
	if name == "" {
		name = NewListName
	}
	l := s.newList(name)

	for _, phase := range preset.Phases(p) {
		l.Categories = append(l.Categories, model.Category{
			ID:    s.newCategoryID(),
			Name:  fmt.Sprintf("Phase %d", phase),
			Phase: phase,
		})
	}

	for _, item := range p.Items {
		if item.Quantity <= 0 {
			continue
		}
		if existing := l.Item(item.ID); existing != nil {
			existing.Quantity = item.Quantity
			continue
		}
		l.Items = append(l.Items, model.ItemEntry{
			ItemID:   item.ID,
			Quantity: item.Quantity,
			Phase:    model.PhasePtr(item.Phase),
		})
	}

	s.lists = append(s.lists, l)
	s.activeID = l.ID
	s.importedID = l.ID
	s.logger.Info("preset imported", "name", name, "list", l.ID, "items", len(l.Items))
	return l.ID
}

// Export renders a list as a preset-compatible file. Only entries with a
// positive quantity are written; entries without a phase get phase 1.
func (s *Store) Export(listID string) (model.ExportFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listID == "" {
		listID = s.activeID
	}
	i := s.indexOf(listID)
	if i < 0 {
		return model.ExportFile{}, ErrListNotFound
	}
	l := s.lists[i]

	out := model.ExportFile{
		Name:        l.Name,
		Description: preset.ExportDescription,
		Category:    preset.ExportCategory,
		Items:       []model.PresetItem{},
	}
	for _, item := range l.Items {
		if item.Quantity <= 0 {
			continue
		}
		phase := preset.DefaultExportPhase
		if item.Phase != nil {
			phase = *item.Phase
		}
		out.Items = append(out.Items, model.PresetItem{ID: item.ItemID, Quantity: item.Quantity, Phase: phase})
	}
	return out, nil
}
