package payload

import (
	"encoding/json"
	"fmt"

	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

// Wire schemas, one per version. Each version embeds the previous one so a
// field is only read from payloads whose version introduced it.

type wireCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phase int    `json:"phase"`
}

type wireV1 struct {
	V int         `json:"v"`
	N string      `json:"n"`
	I map[int]int `json:"i"`
}

type wireV2 struct {
	wireV1
	C []wireCategory `json:"c,omitempty"`
	P map[int]int    `json:"p,omitempty"`
}

type wireV3 struct {
	wireV2
	K []int `json:"k,omitempty"`
}

type envelope struct {
	V *int `json:"v"`
}

func parseJSON(data []byte) (*Payload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.V == nil {
		return nil, fmt.Errorf("%w: missing version", ErrMalformed)
	}

	var w wireV3
	switch v := *env.V; {
	case v == VersionQuantities:
		if err := json.Unmarshal(data, &w.wireV1); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case v == VersionCategories:
		if err := json.Unmarshal(data, &w.wireV2); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case v == VersionChecked:
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, v)
	}

	if w.I == nil {
		return nil, fmt.Errorf("%w: missing quantities", ErrMalformed)
	}
	return fromWire(w), nil
}

func fromWire(w wireV3) *Payload {
	p := &Payload{
		Version:    w.V,
		Name:       w.N,
		Quantities: make(map[int]int, len(w.I)),
	}
	for id, qty := range w.I {
		if qty > 0 {
			p.Quantities[id] = qty
		}
	}

	if len(w.C) > 0 {
		p.Categories = make([]model.Category, len(w.C))
		for i, c := range w.C {
			p.Categories[i] = model.Category{ID: c.ID, Name: c.Name, Phase: c.Phase}
		}
	}

	for id, phase := range w.P {
		if _, ok := p.Quantities[id]; !ok {
			continue
		}
		if p.PhaseAssignments == nil {
			p.PhaseAssignments = make(map[int]int)
		}
		p.PhaseAssignments[id] = phase
	}

	for _, id := range w.K {
		if _, ok := p.Quantities[id]; ok {
			p.CheckedIDs = append(p.CheckedIDs, id)
		}
	}
	return p
}
