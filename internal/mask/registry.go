package mask

import (
	"fmt"
	"sync"

	"xrd-template/internal/raster"
	"xrd-template/internal/threshold"
	"xrd-template/pkg/geometry"
)

// EventType identifies a registry notification.
type EventType int

const (
	// EventMasksChanged fires after any structural change to the
	// registry: add, remove, rename, or import.
	EventMasksChanged EventType = iota
	// EventVisibilityChanged fires when a mask's visibility flips.
	EventVisibilityChanged
	// EventRenamed fires after a committed rename.
	EventRenamed
	// EventRemoved fires after a mask is removed.
	EventRemoved
)

// EventListener receives registry notifications.
type EventListener func(data interface{})

// VisibilityChange is the payload for EventVisibilityChanged.
type VisibilityChange struct {
	Name    string
	Visible bool
}

// Rename is the payload for EventRenamed.
type Rename struct {
	Old string
	New string
}

// Removal is the payload for EventRemoved.
type Removal struct {
	Name string
}

// Registry owns every registered mask. All methods are safe for
// concurrent use; listeners are invoked outside the registry lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string // insertion order of names
	visible []string // visible names, in presentation order

	thresholdName string // name of the singleton threshold mask, "" if none
	thresholdCfg  *threshold.Config

	renameFrom    string
	renamePending bool

	created int // total masks ever registered, drives color assignment

	listeners map[EventType][]EventListener
}

// NewRegistry creates an empty registry. cfg is the threshold
// configuration reset when the threshold mask is removed; it may be nil.
func NewRegistry(cfg *threshold.Config) *Registry {
	return &Registry{
		entries:      make(map[string]*Entry),
		thresholdCfg: cfg,
		listeners:    make(map[EventType][]EventListener),
	}
}

// On registers a listener for the given event type.
func (r *Registry) On(event EventType, listener EventListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[event] = append(r.listeners[event], listener)
}

func (r *Registry) emit(event EventType, data interface{}) {
	r.mu.RLock()
	listeners := make([]EventListener, len(r.listeners[event]))
	copy(listeners, r.listeners[event])
	r.mu.RUnlock()
	for _, l := range listeners {
		l(data)
	}
}

// UniqueName derives a name not yet in use by suffixing base with an
// increasing counter.
func (r *Registry) UniqueName(base string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.uniqueNameLocked(base)
}

func (r *Registry) uniqueNameLocked(base string) string {
	if _, exists := r.entries[base]; !exists {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if _, exists := r.entries[name]; !exists {
			return name
		}
	}
}

// add registers an entry unless an existing entry carries a bit-identical
// payload. Duplicate payloads are silently dropped so that the same mask
// arriving through different source formats registers exactly once.
// New masks start hidden.
func (r *Registry) add(entry *Entry) bool {
	r.mu.Lock()
	for _, name := range r.order {
		if samePayload(r.entries[name], entry) {
			r.mu.Unlock()
			return false
		}
	}
	entry.Name = r.uniqueNameLocked(entry.Name)
	entry.Color = nextColor(r.created)
	r.created++
	r.entries[entry.Name] = entry
	r.order = append(r.order, entry.Name)
	if entry.Type == TypeThreshold && r.thresholdName == "" {
		r.thresholdName = entry.Name
	}
	r.mu.Unlock()

	r.emit(EventMasksChanged, nil)
	return true
}

// AddRegion registers a region-of-interest polygon mask.
func (r *Registry) AddRegion(name string, poly *geometry.Polygon) bool {
	return r.add(&Entry{Name: name, Type: TypeRegion, Polygon: poly})
}

// AddRaw registers a polygon mask tied to a raw detector panel.
func (r *Registry) AddRaw(name, detector string, poly *geometry.Polygon) bool {
	return r.add(&Entry{Name: name, Type: TypeRaw, Detector: detector, Polygon: poly})
}

// AddImported registers a raster mask merged from an archive.
func (r *Registry) AddImported(name string, arr *raster.Mask) bool {
	return r.add(&Entry{Name: name, Type: TypeImported, Array: arr})
}

// ActivateThreshold installs the singleton threshold mask. It is a no-op
// returning false if a threshold mask already exists. Unlike other masks,
// the threshold mask becomes visible immediately.
func (r *Registry) ActivateThreshold(arr *raster.Mask) (string, bool) {
	r.mu.RLock()
	active := r.thresholdName != ""
	r.mu.RUnlock()
	if active {
		return "", false
	}

	entry := &Entry{Name: "threshold", Type: TypeThreshold, Array: arr}
	if !r.add(entry) {
		return "", false
	}

	r.mu.Lock()
	r.visible = append(r.visible, entry.Name)
	r.mu.Unlock()
	r.emit(EventVisibilityChanged, VisibilityChange{Name: entry.Name, Visible: true})
	return entry.Name, true
}

// UpdateThreshold replaces the payload of the active threshold mask.
// It is a no-op if no threshold mask exists.
func (r *Registry) UpdateThreshold(arr *raster.Mask) bool {
	r.mu.Lock()
	name := r.thresholdName
	if name == "" {
		r.mu.Unlock()
		return false
	}
	r.entries[name].Array = arr
	r.mu.Unlock()
	r.emit(EventMasksChanged, nil)
	return true
}

// ThresholdActive reports whether the singleton threshold mask exists.
func (r *Registry) ThresholdActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.thresholdName != ""
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Names returns all registered names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered masks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// VisibleNames returns the names of visible masks in presentation order.
func (r *Registry) VisibleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.visible))
	copy(names, r.visible)
	return names
}

// IsVisible reports whether name is currently visible.
func (r *Registry) IsVisible(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visibleIndexLocked(name) >= 0
}

func (r *Registry) visibleIndexLocked(name string) int {
	for i, n := range r.visible {
		if n == name {
			return i
		}
	}
	return -1
}

// SetVisibility shows or hides a mask. Unknown names and transitions to
// the current state are silent no-ops.
func (r *Registry) SetVisibility(name string, visible bool) {
	r.mu.Lock()
	if _, ok := r.entries[name]; !ok {
		r.mu.Unlock()
		return
	}
	idx := r.visibleIndexLocked(name)
	if visible == (idx >= 0) {
		r.mu.Unlock()
		return
	}
	if visible {
		r.visible = append(r.visible, name)
	} else {
		r.visible = append(r.visible[:idx], r.visible[idx+1:]...)
	}
	r.mu.Unlock()
	r.emit(EventVisibilityChanged, VisibilityChange{Name: name, Visible: visible})
}

// ShowAll makes every registered mask visible.
func (r *Registry) ShowAll() {
	for _, name := range r.Names() {
		r.SetVisibility(name, true)
	}
}

// HideAll hides every registered mask.
func (r *Registry) HideAll() {
	for _, name := range r.VisibleNames() {
		r.SetVisibility(name, false)
	}
}

// BeginRename captures the current name of a mask about to be edited.
// The registry is not modified until CommitRename.
func (r *Registry) BeginRename(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return false
	}
	r.renameFrom = name
	r.renamePending = true
	return true
}

// CancelRename abandons a pending rename.
func (r *Registry) CancelRename() {
	r.mu.Lock()
	r.renamePending = false
	r.renameFrom = ""
	r.mu.Unlock()
}

// CommitRename applies the captured rename to newName. It fails, leaving
// the registry untouched, when no rename is pending, the name is
// unchanged or empty, or newName collides with another mask. The mask
// keeps its position in both the insertion order and the visible list.
func (r *Registry) CommitRename(newName string) bool {
	r.mu.Lock()
	if !r.renamePending {
		r.mu.Unlock()
		return false
	}
	old := r.renameFrom
	r.renamePending = false
	r.renameFrom = ""

	if newName == "" || newName == old {
		r.mu.Unlock()
		return false
	}
	if _, taken := r.entries[newName]; taken {
		r.mu.Unlock()
		return false
	}
	entry, ok := r.entries[old]
	if !ok {
		r.mu.Unlock()
		return false
	}

	entry.Name = newName
	delete(r.entries, old)
	r.entries[newName] = entry
	for i, n := range r.order {
		if n == old {
			r.order[i] = newName
			break
		}
	}
	if idx := r.visibleIndexLocked(old); idx >= 0 {
		r.visible[idx] = newName
	}
	if r.thresholdName == old {
		r.thresholdName = newName
	}
	r.mu.Unlock()

	r.emit(EventRenamed, Rename{Old: old, New: newName})
	r.emit(EventMasksChanged, nil)
	return true
}

// Remove deletes a mask, purging it from the visible list. Removing the
// threshold mask additionally resets the threshold configuration so a
// fresh threshold session starts from defaults. Unknown names are a
// silent no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	if _, ok := r.entries[name]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if idx := r.visibleIndexLocked(name); idx >= 0 {
		r.visible = append(r.visible[:idx], r.visible[idx+1:]...)
	}
	wasThreshold := r.thresholdName == name
	if wasThreshold {
		r.thresholdName = ""
	}
	cfg := r.thresholdCfg
	r.mu.Unlock()

	if wasThreshold && cfg != nil {
		cfg.Reset()
	}
	r.emit(EventRemoved, Removal{Name: name})
	r.emit(EventMasksChanged, nil)
}

// Clear removes every mask and resets the threshold state.
func (r *Registry) Clear() {
	for _, name := range r.Names() {
		r.Remove(name)
	}
}
