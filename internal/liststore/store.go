// Package liststore owns the collection of lists: identity, item and category
// mutations, persistence through a key/value port, and reconciliation of
// lists arriving through share links or presets.
//
// All mutations are serialized by one mutex and persisted before the lock is
// released, so they apply and reach storage in invocation order. Readers get
// deep copies and must go through Store methods to change anything.
//
// Persistence is best effort: a failed write is logged and counted but the
// in-memory change stands.
package liststore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bhi-elliot/ScrappyMart/internal/metrics"
	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

// Durable record keys.
const (
	KeyLists      = "scrappymart-lists"
	KeyActiveList = "scrappymart-active-list"
	// KeyConsumedLink holds the digest of the last startup link taken in, so a
	// link that stays configured is not imported again on every start.
	KeyConsumedLink = "scrappymart-consumed-link"
)

const (
	NewListName      = "New List"
	ImportedListName = "Imported List"
)

var (
	ErrListNotFound     = errors.New("list not found")
	ErrNoPendingImport  = errors.New("no pending import")
	ErrPresetSuperseded = errors.New("preset import superseded by a newer request")
)

// Persister is the durable key/value port the store writes its two records to.
type Persister interface {
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
}

// LinkSource is the inbound share link the application was opened with.
// Clear must make later Fragment calls return "".
type LinkSource interface {
	Fragment() string
	Clear()
}

type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventDeleted   EventKind = "deleted"
	EventActivated EventKind = "activated"
	EventImported  EventKind = "imported"
	EventPending   EventKind = "pending"
	EventResolved  EventKind = "resolved"
)

// Event describes a committed change. ListID is empty for changes that do
// not concern a single list.
type Event struct {
	Kind   EventKind
	ListID string
}

type Options struct {
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID returns a unique token; it defaults to a random UUID.
	NewID func() string
	// Links is consulted once by Load and cleared when its link is consumed.
	Links LinkSource
	// BaseURL is the address share links point at.
	BaseURL string
	// OnChange is called after every committed mutation, outside the lock.
	OnChange func(Event)
}

type Store struct {
	mu        sync.Mutex
	persister Persister
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	links     LinkSource
	baseURL   string
	onChange  func(Event)

	lists      []model.List
	activeID   string
	importedID string
	pending    *model.PendingImport
	loaded     bool

	consumedLink  string
	consumedDirty bool

	presetGen atomic.Uint64
}

func New(p Persister, opts Options) *Store {
	s := &Store{
		persister: p,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
		links:     opts.Links,
		baseURL:   opts.BaseURL,
		onChange:  opts.OnChange,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Load reads the persisted records, takes in any inbound share link and makes
// sure at least one list exists. Persistence is enabled from here on.
func (s *Store) Load() {
	s.mu.Lock()

	s.lists = s.readLists()
	s.activeID = s.readActiveID()

	s.consumedLink = s.readConsumedLink()

	var events []Event
	if s.links != nil {
		if encoded := s.links.Fragment(); encoded != "" {
			if linkDigest(encoded) == s.consumedLink {
				s.links.Clear()
				s.logger.Debug("startup link already taken in")
			} else {
				_, events = s.intakeLocked(encoded)
			}
		}
	}

	if len(s.lists) == 0 {
		l := s.newList(model.DefaultListName)
		s.lists = append(s.lists, l)
		s.activeID = l.ID
	}
	if s.indexOf(s.activeID) < 0 {
		s.activeID = s.lists[0].ID
	}

	s.loaded = true
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("lists loaded", "count", len(s.lists), "active", s.activeID)
	s.emit(events)
}

func (s *Store) readLists() []model.List {
	raw, ok, err := s.persister.Load(KeyLists)
	if err != nil {
		s.logger.Error("load lists", "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var lists []model.List
	if err := json.Unmarshal([]byte(raw), &lists); err != nil {
		s.logger.Error("decode stored lists", "error", err)
		return nil
	}
	// Records written before categories existed carry none.
	for i := range lists {
		if lists[i].Categories == nil {
			lists[i].Categories = []model.Category{}
		}
		if lists[i].Items == nil {
			lists[i].Items = []model.ItemEntry{}
		}
	}
	return lists
}

func (s *Store) readActiveID() string {
	raw, ok, err := s.persister.Load(KeyActiveList)
	if err != nil {
		s.logger.Error("load active list", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return raw
}

func (s *Store) readConsumedLink() string {
	raw, ok, err := s.persister.Load(KeyConsumedLink)
	if err != nil {
		s.logger.Error("load consumed link", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return raw
}

func linkDigest(encoded string) string {
	sum := sha256.Sum256([]byte(encoded))
	return hex.EncodeToString(sum[:])
}

// persistLocked writes both records. Failures are absorbed.
func (s *Store) persistLocked() {
	if !s.loaded {
		return
	}

	data, err := json.Marshal(s.lists)
	if err != nil {
		s.persistFailed(KeyLists, err)
		return
	}
	if err := s.persister.Save(KeyLists, string(data)); err != nil {
		s.persistFailed(KeyLists, err)
	}
	if s.activeID != "" {
		if err := s.persister.Save(KeyActiveList, s.activeID); err != nil {
			s.persistFailed(KeyActiveList, err)
		}
	}
	s.persistConsumedLocked()
}

func (s *Store) persistConsumedLocked() {
	if !s.loaded || !s.consumedDirty {
		return
	}
	if err := s.persister.Save(KeyConsumedLink, s.consumedLink); err != nil {
		s.persistFailed(KeyConsumedLink, err)
		return
	}
	s.consumedDirty = false
}

func (s *Store) persistFailed(key string, err error) {
	metrics.PersistFailures.Inc()
	s.logger.Error("persist state", "key", key, "error", err)
}

// commit persists and releases the lock, then publishes events.
func (s *Store) commit(events ...Event) {
	if len(events) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()
	s.emit(events)
}

func (s *Store) emit(events []Event) {
	if s.onChange == nil {
		return
	}
	for _, e := range events {
		s.onChange(e)
	}
}

func (s *Store) newList(name string) model.List {
	now := s.now()
	return model.List{
		ID:         "list_" + s.newID(),
		Name:       name,
		Items:      []model.ItemEntry{},
		Categories: []model.Category{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *Store) newCategoryID() string {
	return "cat_" + s.newID()
}

func (s *Store) indexOf(listID string) int {
	if listID == "" {
		return -1
	}
	for i := range s.lists {
		if s.lists[i].ID == listID {
			return i
		}
	}
	return -1
}

func (s *Store) activeLocked() *model.List {
	if i := s.indexOf(s.activeID); i >= 0 {
		return &s.lists[i]
	}
	return nil
}

func (s *Store) touch(l *model.List) {
	l.UpdatedAt = s.now()
}

// Lists returns a copy of every list in creation order.
func (s *Store) Lists() []model.List {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.List, len(s.lists))
	for i, l := range s.lists {
		out[i] = l.Clone()
	}
	return out
}

func (s *Store) List(listID string) (model.List, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(listID)
	if i < 0 {
		return model.List{}, false
	}
	return s.lists[i].Clone(), true
}

func (s *Store) ActiveList() (model.List, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l := s.activeLocked(); l != nil {
		return l.Clone(), true
	}
	return model.List{}, false
}

func (s *Store) ActiveListID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Store) SetActiveList(listID string) error {
	s.mu.Lock()
	if s.indexOf(listID) < 0 {
		s.mu.Unlock()
		return ErrListNotFound
	}
	if s.activeID == listID {
		s.mu.Unlock()
		return nil
	}
	s.activeID = listID
	s.commit(Event{Kind: EventActivated, ListID: listID})
	return nil
}

// ImportedListID returns the list flagged as freshly imported, or "".
func (s *Store) ImportedListID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importedID
}

func (s *Store) DismissImportNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importedID = ""
}

// PendingImport returns the import awaiting a decision, if any.
func (s *Store) PendingImport() (model.PendingImport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return model.PendingImport{}, false
	}
	return s.pending.Clone(), true
}
