package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Mutation describes an optimistic write against one or more keys holding
// values of type V. R is the server result.
type Mutation[V, R any] struct {
	// Keys are the cache keys the write touches. Keys that are not cached are
	// locked but left alone.
	Keys []string
	// Prefixes widen the write to every cached key with one of these
	// prefixes, resolved at the moment Apply runs. Those keys are not locked:
	// mutations sharing them must also share a key in Keys.
	Prefixes []string
	// Apply returns the optimistic value for key. It must not modify v in place.
	Apply func(key string, v V) V
	// Run performs the network call. It starts only after Apply has been
	// applied to every key.
	Run func(ctx context.Context) (R, error)
	// Commit reconciles the optimistic value with the server result. Nil keeps
	// the optimistic value.
	Commit func(key string, v V, result R) V
	// Invalidate lists key prefixes refreshed after a successful write.
	Invalidate []string
}

type saved struct {
	key     string
	present bool
	entry   entry
}

// Mutate applies m optimistically, runs it, and settles the cache: on success
// Commit's value replaces the optimistic one; on failure every key is restored
// to exactly what it held before. Mutations sharing a key run one at a time,
// so a settlement always completes before the next mutation on that key
// applies. Invalidation after success runs in the background.
func Mutate[V, R any](ctx context.Context, c *Cache, m Mutation[V, R]) (R, error) {
	keys := uniqueSorted(m.Keys)
	unlock := c.lockKeys(keys)

	snapshot, touched, epoch, changed := applyOptimistic(c, keys, m.Prefixes, m.Apply)
	for _, k := range changed {
		c.emit(k, ReasonOptimistic)
	}

	result, err := m.Run(ctx)

	if err != nil {
		restored := rollback(c, snapshot, epoch)
		unlock()
		for _, k := range restored {
			c.emit(k, ReasonRolledBack)
		}
		c.log.Debugw("mutation rolled back", "keys", touched, "error", err)
		return result, err
	}

	committed := commit(c, touched, epoch, m.Commit, result)
	unlock()
	for _, k := range committed {
		c.emit(k, ReasonCommitted)
	}
	for _, prefix := range m.Invalidate {
		c.Invalidate(prefix)
	}
	return result, nil
}

func applyOptimistic[V any](c *Cache, keys, prefixes []string, apply func(string, V) V) ([]saved, []string, uint64, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(prefixes) > 0 {
		keys = append([]string(nil), keys...)
		for k := range c.entries {
			for _, p := range prefixes {
				if strings.HasPrefix(k, p) {
					keys = append(keys, k)
					break
				}
			}
		}
		keys = uniqueSorted(keys)
	}

	snapshot := make([]saved, 0, len(keys))
	var changed []string
	for _, k := range keys {
		// in-flight fetches for k predate this write
		c.gens[k]++

		e, ok := c.entries[k]
		if !ok {
			snapshot = append(snapshot, saved{key: k})
			continue
		}
		snapshot = append(snapshot, saved{key: k, present: true, entry: *e})
		v, ok := e.value.(V)
		if !ok || apply == nil {
			continue
		}
		next := *e
		next.value = apply(k, v)
		c.entries[k] = &next
		changed = append(changed, k)
	}
	return snapshot, keys, c.epoch, changed
}

func rollback(c *Cache, snapshot []saved, epoch uint64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.epoch != epoch {
		return nil
	}

	var restored []string
	for _, s := range snapshot {
		c.gens[s.key]++
		if !s.present {
			delete(c.entries, s.key)
			continue
		}
		e := s.entry
		c.entries[s.key] = &e
		restored = append(restored, s.key)
	}
	return restored
}

func commit[V, R any](c *Cache, keys []string, epoch uint64, reconcile func(string, V, R) V, result R) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.epoch != epoch {
		return nil
	}

	var committed []string
	for _, k := range keys {
		c.gens[k]++
		e, ok := c.entries[k]
		if !ok || reconcile == nil {
			continue
		}
		v, ok := e.value.(V)
		if !ok {
			continue
		}
		next := *e
		next.value = reconcile(k, v, result)
		c.entries[k] = &next
		committed = append(committed, k)
	}
	return committed
}

func (c *Cache) lockKeys(keys []string) (unlock func()) {
	c.locksMu.Lock()
	held := make([]*sync.Mutex, len(keys))
	for i, k := range keys {
		l, ok := c.locks[k]
		if !ok {
			l = &sync.Mutex{}
			c.locks[k] = l
		}
		held[i] = l
	}
	c.locksMu.Unlock()

	for _, l := range held {
		l.Lock()
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
