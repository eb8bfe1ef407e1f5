package liststore

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"

	"github.com/bhi-elliot/ScrappyMart/internal/metrics"
	"github.com/bhi-elliot/ScrappyMart/internal/model"
	"github.com/bhi-elliot/ScrappyMart/internal/payload"
	"github.com/bhi-elliot/ScrappyMart/internal/sharelink"
)

type IntakeOutcome string

const (
	// IntakeIgnored means the link was empty or did not decode.
	IntakeIgnored IntakeOutcome = "ignored"
	// IntakeImported means a new list was created and activated.
	IntakeImported IntakeOutcome = "imported"
	// IntakePending means the name collided and a decision is required.
	IntakePending IntakeOutcome = "pending"
	// IntakeRejected means an earlier import is still awaiting a decision.
	IntakeRejected IntakeOutcome = "rejected"
)

// IntakeResult reports what happened to an inbound link. ListID is the new
// list for IntakeImported and the colliding list for IntakePending.
type IntakeResult struct {
	Outcome IntakeOutcome `json:"outcome"`
	ListID  string        `json:"list_id,omitempty"`
}

// ShareLink encodes a list into a share URL. An empty listID means the active
// list. A list that cannot be found yields an empty-fragment URL.
func (s *Store) ShareLink(listID string) string {
	s.mu.Lock()
	if listID == "" {
		listID = s.activeID
	}
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		metrics.PayloadEncodes.WithLabelValues("missing_list").Inc()
		return sharelink.Build(s.baseURL, "")
	}
	p := payload.FromList(s.lists[i])
	s.mu.Unlock()

	encoded := payload.Encode(p)
	if encoded == "" {
		metrics.PayloadEncodes.WithLabelValues("empty").Inc()
		s.logger.Warn("share payload could not be encoded", "list", listID)
	} else {
		metrics.PayloadEncodes.WithLabelValues("ok").Inc()
	}
	return sharelink.Build(s.baseURL, encoded)
}

// Intake decodes an inbound share link (a URL, fragment or bare encoded
// string). Undecodable input is dropped silently. A name matching an existing
// list case-insensitively parks the data as a pending import instead of
// changing anything.
func (s *Store) Intake(raw string) IntakeResult {
	s.mu.Lock()
	result, events := s.intakeLocked(sharelink.Extract(raw))
	s.commit(events...)
	return result
}

func (s *Store) intakeLocked(encoded string) (IntakeResult, []Event) {
	if encoded == "" {
		metrics.IntakeOutcomes.WithLabelValues(string(IntakeIgnored)).Inc()
		return IntakeResult{Outcome: IntakeIgnored}, nil
	}

	p, err := payload.Parse(encoded)
	if err != nil {
		s.logger.Warn("shared list not imported", "error", err)
		metrics.IntakeOutcomes.WithLabelValues(string(IntakeIgnored)).Inc()
		return IntakeResult{Outcome: IntakeIgnored}, nil
	}

	if s.pending != nil {
		s.logger.Warn("shared list rejected: pending import outstanding", "pending", s.pending.Name)
		metrics.IntakeOutcomes.WithLabelValues(string(IntakeRejected)).Inc()
		return IntakeResult{Outcome: IntakeRejected, ListID: s.pending.ExistingListID}, nil
	}

	name, items, categories := s.candidate(p)

	if existing := s.findByName(name); existing != nil {
		s.pending = &model.PendingImport{
			Name:           name,
			Items:          items,
			Categories:     categories,
			ExistingListID: existing.ID,
		}
		s.logger.Info("shared list collides with existing list", "name", name, "existing", existing.ID)
		metrics.IntakeOutcomes.WithLabelValues(string(IntakePending)).Inc()
		return IntakeResult{Outcome: IntakePending, ListID: existing.ID},
			[]Event{{Kind: EventPending, ListID: existing.ID}}
	}

	l := s.newList(name)
	l.Items = items
	l.Categories = categories
	s.lists = append(s.lists, l)
	s.activeID = l.ID
	s.importedID = l.ID
	s.clearLink()

	s.logger.Info("shared list imported", "name", name, "list", l.ID, "items", len(items))
	metrics.IntakeOutcomes.WithLabelValues(string(IntakeImported)).Inc()
	return IntakeResult{Outcome: IntakeImported, ListID: l.ID},
		[]Event{{Kind: EventImported, ListID: l.ID}}
}

// candidate turns a decoded payload into list contents. Items are ordered by
// item id so repeated imports of one link produce identical lists.
func (s *Store) candidate(p *payload.Payload) (string, []model.ItemEntry, []model.Category) {
	name := p.Name
	if name == "" {
		name = ImportedListName
	}

	categories := make([]model.Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		if c.ID == "" {
			c.ID = s.newCategoryID()
		}
		categories = append(categories, c)
	}

	checked := make(map[int]bool, len(p.CheckedIDs))
	for _, id := range p.CheckedIDs {
		checked[id] = true
	}

	items := make([]model.ItemEntry, 0, len(p.Quantities))
	for id, qty := range p.Quantities {
		entry := model.ItemEntry{ItemID: id, Quantity: qty, Checked: checked[id]}
		if phase, ok := p.PhaseAssignments[id]; ok {
			entry.Phase = model.PhasePtr(phase)
		}
		items = append(items, entry)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })

	return name, items, categories
}

func (s *Store) findByName(name string) *model.List {
	folded := cases.Fold().String(name)
	for i := range s.lists {
		if cases.Fold().String(s.lists[i].Name) == folded {
			return &s.lists[i]
		}
	}
	return nil
}

// uniqueName returns name, or name suffixed " (2)", " (3)", ... until no list
// carries it case-insensitively.
func (s *Store) uniqueName(name string) string {
	candidate := name
	for n := 2; s.findByName(candidate) != nil; n++ {
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
	return candidate
}

// clearLink drops the startup link and records it as consumed.
func (s *Store) clearLink() {
	if s.links == nil {
		return
	}
	encoded := s.links.Fragment()
	s.links.Clear()
	if encoded == "" {
		return
	}
	s.consumedLink = linkDigest(encoded)
	s.consumedDirty = true
	s.persistConsumedLocked()
}

// ConfirmImportOverwrite replaces the colliding list's items and categories
// with the pending data, keeping its id and name, and activates it.
func (s *Store) ConfirmImportOverwrite() (string, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return "", ErrNoPendingImport
	}
	pending := s.pending
	s.pending = nil
	s.clearLink()
	metrics.PendingResolutions.WithLabelValues("overwrite").Inc()

	i := s.indexOf(pending.ExistingListID)
	if i < 0 {
		// The colliding list was deleted while the decision was open.
		l := s.newList(s.uniqueName(pending.Name))
		l.Items = pending.Items
		l.Categories = pending.Categories
		s.lists = append(s.lists, l)
		s.activeID = l.ID
		s.importedID = l.ID
		s.logger.Info("pending import target gone, created new list", "list", l.ID, "name", l.Name)
		s.commit(Event{Kind: EventImported, ListID: l.ID}, Event{Kind: EventResolved, ListID: l.ID})
		return l.ID, nil
	}

	l := &s.lists[i]
	l.Items = pending.Items
	l.Categories = pending.Categories
	s.touch(l)
	s.activeID = l.ID
	s.importedID = l.ID
	s.logger.Info("pending import overwrote list", "list", l.ID)
	s.commit(Event{Kind: EventUpdated, ListID: l.ID}, Event{Kind: EventResolved, ListID: l.ID})
	return l.ID, nil
}

// ConfirmImportAsNew creates the pending data as a new list under a
// disambiguated name and activates it.
func (s *Store) ConfirmImportAsNew() (string, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return "", ErrNoPendingImport
	}
	pending := s.pending
	s.pending = nil
	s.clearLink()
	metrics.PendingResolutions.WithLabelValues("new").Inc()

	l := s.newList(s.uniqueName(pending.Name))
	l.Items = pending.Items
	l.Categories = pending.Categories
	s.lists = append(s.lists, l)
	s.activeID = l.ID
	s.importedID = l.ID
	s.logger.Info("pending import created as new list", "list", l.ID, "name", l.Name)
	s.commit(Event{Kind: EventImported, ListID: l.ID}, Event{Kind: EventResolved, ListID: l.ID})
	return l.ID, nil
}

// CancelPendingImport discards the pending data.
func (s *Store) CancelPendingImport() error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return ErrNoPendingImport
	}
	existing := s.pending.ExistingListID
	s.pending = nil
	s.clearLink()
	metrics.PendingResolutions.WithLabelValues("cancel").Inc()
	s.mu.Unlock()

	s.emit([]Event{{Kind: EventResolved, ListID: existing}})
	return nil
}
