package host

import (
	"encoding/binary"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/val"
)

// portable is a scope-independent copy of a value: inline values keep their
// body, objects keep their kind and a deep copy of their elements. Frozen
// values survive the scope that minted their handles and can be thawed into
// any later scope. Storage and the event log hold only portable values.
type portable struct {
	tag   val.Tag
	body  uint64
	elems []portable
}

func freeze(e val.Env, v val.Val) (portable, error) {
	t := v.Tag()
	if !t.Valid() {
		return portable{}, errors.InvalidData(errors.PhaseHost, nil, "freezing value with invalid tag")
	}
	if !t.IsObject() {
		return portable{tag: t, body: v.Body()}, nil
	}
	elems, err := val.ObjElems(e, v)
	if err != nil {
		return portable{}, err
	}
	p := portable{tag: t, elems: make([]portable, len(elems))}
	for i, el := range elems {
		p.elems[i], err = freeze(e, el)
		if err != nil {
			return portable{}, err
		}
	}
	return p, nil
}

func thaw(e val.Env, p portable) (val.Val, error) {
	if !p.tag.IsObject() {
		return inlineVal(p.tag, p.body), nil
	}
	kind, ok := val.KindForTag(p.tag)
	if !ok {
		return val.Void(), errors.InvalidData(errors.PhaseHost, nil, "thawing value with invalid object tag")
	}
	elems := make([]val.Val, len(p.elems))
	for i, pe := range p.elems {
		el, err := thaw(e, pe)
		if err != nil {
			return val.Void(), err
		}
		elems[i] = el
	}
	return val.NewObjectWith(e, kind, elems)
}

// inlineVal reassembles an inline value from its parts.
func inlineVal(t val.Tag, body uint64) val.Val {
	return val.Val(body<<val.TagBits | uint64(t))
}

// keyBytes is the canonical byte encoding used as the storage map key and
// for deterministic iteration. Identical values always produce identical
// bytes; distinct values produce distinct bytes.
func (p portable) keyBytes() []byte {
	return p.appendKey(nil)
}

func (p portable) appendKey(b []byte) []byte {
	b = append(b, byte(p.tag.Category()))
	if !p.tag.IsObject() {
		var w [8]byte
		binary.BigEndian.PutUint64(w[:], p.body)
		b = append(b, byte(p.tag))
		return append(b, w[:]...)
	}
	b = append(b, byte(p.tag))
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(p.elems)))
	b = append(b, n[:]...)
	for _, el := range p.elems {
		b = el.appendKey(b)
	}
	return b
}

func (p portable) equal(o portable) bool {
	if p.tag != o.tag || p.body != o.body || len(p.elems) != len(o.elems) {
		return false
	}
	for i := range p.elems {
		if !p.elems[i].equal(o.elems[i]) {
			return false
		}
	}
	return true
}
