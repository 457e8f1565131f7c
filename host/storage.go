package host

import (
	"sort"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

// Storage is a contract's persistent key/value store. Keys and values are
// tagged values; both are frozen on write so stored data never references
// an invocation-scoped object handle. Key iteration follows the canonical
// value ordering and is identical across runs.
type Storage struct {
	host    *Host
	entries map[string]storedEntry
}

type storedEntry struct {
	key portable
	val portable
}

func newStorage(h *Host) *Storage {
	return &Storage{host: h, entries: make(map[string]storedEntry)}
}

// Set stores value under key, replacing any previous value.
func (s *Storage) Set(key, value val.Val) error {
	pk, err := freeze(s.host, key)
	if err != nil {
		return err
	}
	pv, err := freeze(s.host, value)
	if err != nil {
		return err
	}
	s.entries[string(pk.keyBytes())] = storedEntry{key: pk, val: pv}
	return nil
}

// Get materializes the value stored under key into the current scope.
// The second return is false when the key is absent.
func (s *Storage) Get(key val.Val) (val.Val, bool, error) {
	pk, err := freeze(s.host, key)
	if err != nil {
		return val.Void(), false, err
	}
	e, ok := s.entries[string(pk.keyBytes())]
	if !ok {
		return val.Void(), false, nil
	}
	v, err := thaw(s.host, e.val)
	if err != nil {
		return val.Void(), false, err
	}
	return v, true, nil
}

// Has reports whether key is present.
func (s *Storage) Has(key val.Val) (bool, error) {
	pk, err := freeze(s.host, key)
	if err != nil {
		return false, err
	}
	_, ok := s.entries[string(pk.keyBytes())]
	return ok, nil
}

// Remove deletes the entry under key if present.
func (s *Storage) Remove(key val.Val) error {
	pk, err := freeze(s.host, key)
	if err != nil {
		return err
	}
	delete(s.entries, string(pk.keyBytes()))
	return nil
}

// Len returns the number of stored entries.
func (s *Storage) Len() int {
	return len(s.entries)
}

// Keys materializes all keys in the canonical value ordering.
func (s *Storage) Keys() ([]val.Val, error) {
	type keyed struct {
		enc string
		v   val.Val
	}
	keys := make([]keyed, 0, len(s.entries))
	for enc, e := range s.entries {
		v, err := thaw(s.host, e.key)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "materialize storage key")
		}
		keys = append(keys, keyed{enc: enc, v: v})
	}
	var cmpErr error
	sort.Slice(keys, func(i, j int) bool {
		c, err := val.Compare(s.host, keys[i].v, keys[j].v)
		if err != nil {
			if cmpErr == nil {
				cmpErr = err
			}
			return false
		}
		if c != 0 {
			return c < 0
		}
		// Inline and object forms of one numeric value tie under
		// Compare; the encoded form breaks the tie deterministically.
		return keys[i].enc < keys[j].enc
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	out := make([]val.Val, len(keys))
	for i, k := range keys {
		out[i] = k.v
	}
	return out, nil
}

func (s *Storage) orderedKeys() []string {
	ordered := make([]string, 0, len(s.entries))
	for k := range s.entries {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)
	return ordered
}
