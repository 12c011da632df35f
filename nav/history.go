package nav

import "sync"

// History is the browser-style history stack the controller writes to.
type History interface {
	Push(p Payload, fragment string)
	Replace(p Payload, fragment string)
}

type historyEntry struct {
	payload  *Payload
	fragment string
}

// MemoryHistory is an in-process History with back and forward. It starts
// with a single entry that has no payload, like a freshly opened page.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []historyEntry
	index   int
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{entries: []historyEntry{{}}}
}

// Push drops any forward entries and appends a new current entry.
func (h *MemoryHistory) Push(p Payload, fragment string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], historyEntry{payload: &p, fragment: fragment})
	h.index = len(h.entries) - 1
}

func (h *MemoryHistory) Replace(p Payload, fragment string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = historyEntry{payload: &p, fragment: fragment}
}

// Back moves to the previous entry and returns its payload for PopState.
// ok is false at the start of history.
func (h *MemoryHistory) Back() (payload *Payload, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return nil, false
	}
	h.index--
	return h.entries[h.index].payload, true
}

// Forward moves to the next entry. ok is false at the end of history.
func (h *MemoryHistory) Forward() (payload *Payload, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return nil, false
	}
	h.index++
	return h.entries[h.index].payload, true
}

// Fragment returns the current entry's fragment.
func (h *MemoryHistory) Fragment() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].fragment
}

func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *MemoryHistory) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}
