package executor

import (
	"slices"
	"sync"
)

// DisabledTools tracks tools switched off per chat stream. A disabled tool
// is neither offered to the model nor executed in that chat.
type DisabledTools struct {
	mu    sync.RWMutex
	chats map[string]map[string]struct{}
}

// NewDisabledTools creates an empty store.
func NewDisabledTools() *DisabledTools {
	return &DisabledTools{chats: make(map[string]map[string]struct{})}
}

// Disable switches a tool off for a chat. It reports whether the state changed.
func (d *DisabledTools) Disable(chatID, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.chats[chatID]
	if !ok {
		set = make(map[string]struct{})
		d.chats[chatID] = set
	}
	if _, exists := set[name]; exists {
		return false
	}
	set[name] = struct{}{}
	return true
}

// Enable switches a tool back on for a chat. It reports whether the state changed.
func (d *DisabledTools) Enable(chatID, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.chats[chatID]
	if !ok {
		return false
	}
	if _, exists := set[name]; !exists {
		return false
	}
	delete(set, name)
	if len(set) == 0 {
		delete(d.chats, chatID)
	}
	return true
}

// IsDisabled reports whether a tool is switched off for a chat.
func (d *DisabledTools) IsDisabled(chatID, name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.chats[chatID][name]
	return ok
}

// List returns the sorted names of the tools disabled for a chat.
func (d *DisabledTools) List(chatID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]string, 0, len(d.chats[chatID]))
	for name := range d.chats[chatID] {
		result = append(result, name)
	}
	slices.Sort(result)
	return result
}
