package host

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

// Snapshot is a serialized ledger state for deterministic test runs: every
// storage entry of every contract as portable value trees. The file format
// is plain JSON so fixtures can be inspected and written by hand.
type Snapshot struct {
	Ledger []SnapshotEntry `json:"ledger"`
}

// SnapshotEntry is one storage entry.
type SnapshotEntry struct {
	Contract string   `json:"contract"` // hex address
	Key      snapNode `json:"key"`
	Value    snapNode `json:"value"`
}

type snapNode struct {
	Type  string     `json:"type"`
	Body  *uint64    `json:"body,omitempty"`
	Elems []snapNode `json:"elems,omitempty"`
}

func toSnapNode(p portable) snapNode {
	n := snapNode{Type: p.tag.String()}
	if !p.tag.IsObject() {
		body := p.body
		n.Body = &body
		return n
	}
	n.Elems = make([]snapNode, len(p.elems))
	for i, el := range p.elems {
		n.Elems[i] = toSnapNode(el)
	}
	return n
}

func fromSnapNode(n snapNode) (portable, error) {
	t, ok := tagByName(n.Type)
	if !ok {
		return portable{}, errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("unknown value type %q", n.Type))
	}
	p := portable{tag: t}
	if !t.IsObject() {
		if n.Body != nil {
			p.body = *n.Body
		}
		if p.body > val.BodyMask {
			return portable{}, errors.InvalidData(errors.PhaseLoad, nil, "inline body exceeds 56 bits")
		}
		return p, nil
	}
	p.elems = make([]portable, len(n.Elems))
	for i, el := range n.Elems {
		pe, err := fromSnapNode(el)
		if err != nil {
			return portable{}, err
		}
		p.elems[i] = pe
	}
	return p, nil
}

func tagByName(name string) (val.Tag, bool) {
	for t := val.Tag(0); t <= val.TagLedgerKeyObj; t++ {
		if t.Valid() && t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// WriteSnapshot serializes the host's entire storage state to path.
func (h *Host) WriteSnapshot(path string) error {
	snap := Snapshot{}

	addrs := make([]val.Address, 0, len(h.storage))
	for a := range h.storage {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		for k := range addrs[i] {
			if addrs[i][k] != addrs[j][k] {
				return addrs[i][k] < addrs[j][k]
			}
		}
		return false
	})

	for _, a := range addrs {
		s := h.storage[a]
		for _, k := range s.orderedKeys() {
			e := s.entries[k]
			snap.Ledger = append(snap.Ledger, SnapshotEntry{
				Contract: hex.EncodeToString(a[:]),
				Key:      toSnapNode(e.key),
				Value:    toSnapNode(e.val),
			})
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "marshal snapshot")
	}
	return os.WriteFile(path, data, 0o644)
}

// RestoreSnapshot materializes a serialized ledger state into the host,
// replacing the storage of every contract the snapshot mentions.
func (h *Host) RestoreSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Load("read snapshot", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.Load("parse snapshot", err)
	}

	replaced := make(map[val.Address]bool)
	for i, entry := range snap.Ledger {
		raw, err := hex.DecodeString(entry.Contract)
		if err != nil || len(raw) != val.AddressLen {
			return errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("ledger[%d]: bad contract address", i))
		}
		var addr val.Address
		copy(addr[:], raw)

		if !replaced[addr] {
			h.storage[addr] = newStorage(h)
			replaced[addr] = true
		}

		pk, err := fromSnapNode(entry.Key)
		if err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, fmt.Sprintf("ledger[%d] key", i))
		}
		pv, err := fromSnapNode(entry.Value)
		if err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, fmt.Sprintf("ledger[%d] value", i))
		}
		h.storage[addr].entries[string(pk.keyBytes())] = storedEntry{key: pk, val: pv}
	}
	return nil
}
