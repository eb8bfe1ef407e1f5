// Package sharelink places encoded payloads in URL fragments and reads them back.
package sharelink

import (
	"strings"
	"sync"
)

// Marker precedes the encoded payload in a share URL.
const Marker = "#d="

// Build returns base with its fragment replaced by the share marker and
// encoded. An empty encoded string yields an empty-fragment link.
func Build(base, encoded string) string {
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return base + Marker + encoded
}

// Extract returns the encoded payload carried by raw, which may be a full
// share URL, a bare fragment ("#d=..." or "d=...") or the encoded string itself.
func Extract(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, Marker); i >= 0 {
		return raw[i+len(Marker):]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[i+1:]
	}
	return strings.TrimPrefix(raw, Marker[1:])
}

// Holder keeps the inbound share link the application was opened with until
// it is consumed.
type Holder struct {
	mu   sync.Mutex
	link string
}

func NewHolder(link string) *Holder {
	return &Holder{link: link}
}

// Set replaces the held link.
func (h *Holder) Set(link string) {
	h.mu.Lock()
	h.link = link
	h.mu.Unlock()
}

// Fragment returns the encoded payload of the held link, or "" when empty.
func (h *Holder) Fragment() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.link == "" {
		return ""
	}
	return Extract(h.link)
}

// Clear drops the held link so a restart does not import it again.
func (h *Holder) Clear() {
	h.Set("")
}
