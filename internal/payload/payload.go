// Package payload packs a list snapshot into a compact, URL-fragment-safe
// string and back.
//
// The wire form is JSON with single-letter keys, compressed with lz-string's
// URI-component alphabet so links produced here and by the web client are
// interchangeable:
//
//	{"v":3,"n":"Raid","i":{"101":5},"c":[{"id":"..","name":"..","phase":1}],"p":{"101":1},"k":[101]}
//
// Every format change bumps the version. Decoding accepts every version up to
// CurrentVersion; encoding always writes CurrentVersion.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	lzstring "github.com/daku10/go-lz-string"

	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

const (
	// VersionQuantities carries only the name and flat quantities.
	VersionQuantities = 1
	// VersionCategories adds categories and per-item phase assignments.
	VersionCategories = 2
	// VersionChecked adds the checked item set.
	VersionChecked = 3

	CurrentVersion = VersionChecked
)

var (
	ErrEmpty       = errors.New("payload: empty input")
	ErrDecompress  = errors.New("payload: decompression failed")
	ErrMalformed   = errors.New("payload: malformed structure")
	ErrUnsupported = errors.New("payload: unsupported version")
)

// Payload is the decoded snapshot. Nil optional fields mean the payload did
// not carry them.
type Payload struct {
	Version          int
	Name             string
	Quantities       map[int]int
	Categories       []model.Category
	PhaseAssignments map[int]int
	CheckedIDs       []int
}

// Encode serializes p at CurrentVersion. Entries with a non-positive quantity
// are dropped along with their phase and checked state. An empty string means
// no link could be produced.
func Encode(p Payload) string {
	data, err := json.Marshal(toWire(p))
	if err != nil {
		return ""
	}
	out, err := lzstring.CompressToEncodedURIComponent(string(data))
	if err != nil {
		return ""
	}
	return out
}

// Decode is Parse without the reason: it returns nil for any input that does
// not hold a valid payload.
func Decode(encoded string) *Payload {
	p, err := Parse(encoded)
	if err != nil {
		return nil
	}
	return p
}

// Parse decompresses and validates encoded, reporting why it was rejected.
func Parse(encoded string) (p *Payload, err error) {
	if encoded == "" {
		return nil, ErrEmpty
	}

	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: %v", ErrDecompress, r)
		}
	}()

	raw, err := lzstring.DecompressFromEncodedURIComponent(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if raw == "" {
		return nil, ErrDecompress
	}
	return parseJSON([]byte(raw))
}

// FromList builds the share payload for list at CurrentVersion.
func FromList(list model.List) Payload {
	p := Payload{
		Version:    CurrentVersion,
		Name:       list.Name,
		Quantities: make(map[int]int, len(list.Items)),
	}

	for _, item := range list.Items {
		if item.Quantity <= 0 {
			continue
		}
		p.Quantities[item.ItemID] = item.Quantity
		if item.Phase != nil {
			if p.PhaseAssignments == nil {
				p.PhaseAssignments = make(map[int]int)
			}
			p.PhaseAssignments[item.ItemID] = *item.Phase
		}
		if item.Checked {
			p.CheckedIDs = append(p.CheckedIDs, item.ItemID)
		}
	}

	if len(list.Categories) > 0 {
		p.Categories = model.CloneCategories(list.Categories)
	}
	return p
}

func toWire(p Payload) wireV3 {
	w := wireV3{}
	w.V = CurrentVersion
	w.N = p.Name
	w.I = make(map[int]int, len(p.Quantities))
	for id, qty := range p.Quantities {
		if qty > 0 {
			w.I[id] = qty
		}
	}

	for _, c := range p.Categories {
		w.C = append(w.C, wireCategory{ID: c.ID, Name: c.Name, Phase: c.Phase})
	}

	for id, phase := range p.PhaseAssignments {
		if _, ok := w.I[id]; !ok {
			continue
		}
		if w.P == nil {
			w.P = make(map[int]int)
		}
		w.P[id] = phase
	}

	for _, id := range p.CheckedIDs {
		if _, ok := w.I[id]; ok {
			w.K = append(w.K, id)
		}
	}
	sort.Ints(w.K)
	return w
}
