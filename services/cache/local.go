package cache

import (
	"container/list"
	"sync"
	"time"
)

type localItem struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (i *localItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// localTier is the in-process fallback tier. It is bounded by maxEntries and evicts in
// insertion order (a re-set counts as a fresh insertion; reads do not reorder).
type localTier struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	maxEntries int
	now        func() time.Time
}

func newLocalTier(maxEntries int, now func() time.Time) *localTier {
	return &localTier{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        now,
	}
}

// set stores value and returns how many entries were evicted to stay within bounds.
func (l *localTier) set(key string, value []byte, ttl time.Duration) int {
	item := &localItem{key: key, value: value}
	if ttl > 0 {
		item.expiresAt = l.now().Add(ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if el, ok := l.items[key]; ok {
		l.order.Remove(el)
	}
	l.items[key] = l.order.PushBack(item)

	evicted := 0
	for l.maxEntries > 0 && l.order.Len() > l.maxEntries {
		oldest := l.order.Front()
		l.removeElement(oldest)
		evicted++
	}
	return evicted
}

func (l *localTier) get(key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	el, ok := l.items[key]
	if !ok {
		return nil, false
	}
	item := el.Value.(*localItem)
	if item.expired(l.now()) {
		l.removeElement(el)
		return nil, false
	}
	return item.value, true
}

func (l *localTier) delete(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	el, ok := l.items[key]
	if !ok {
		return false
	}
	l.removeElement(el)
	return true
}

// deleteMatching removes every key accepted by match and returns the removed keys.
func (l *localTier) deleteMatching(match func(key string) bool) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []string
	for el := l.order.Front(); el != nil; {
		next := el.Next()
		item := el.Value.(*localItem)
		if match(item.key) {
			l.removeElement(el)
			removed = append(removed, item.key)
		}
		el = next
	}
	return removed
}

// sweep drops every expired entry regardless of access.
func (l *localTier) sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for el := l.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*localItem).expired(now) {
			l.removeElement(el)
			removed++
		}
		el = next
	}
	return removed
}

func (l *localTier) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

func (l *localTier) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[string]*list.Element)
	l.order.Init()
}

// removeElement must be called with mu held.
func (l *localTier) removeElement(el *list.Element) {
	l.order.Remove(el)
	delete(l.items, el.Value.(*localItem).key)
}
