package spec

import (
	"github.com/wippyai/contract-sdk/internal/binary"
)

// Binary format: a 4-byte magic, a version byte, then the entry count
// and each entry in declaration order. All integers are unsigned LEB128
// unless noted. The version byte lets older generators detect a format
// they cannot decode instead of silently mis-reading it.
const (
	FormatVersion = 1
)

var magic = [4]byte{'C', 'S', 'P', 'C'}

const (
	entryFunction  = 0
	entryStruct    = 1
	entryUnion     = 2
	entryEnum      = 3
	entryErrorEnum = 4
)

const (
	refVec    = 0x20
	refMap    = 0x21
	refOption = 0x22
	refResult = 0x23
	refNamed  = 0x24
)

// Encode returns the canonical binary serialization. The bytes are
// computed once at finalize time; the same finalized Spec always
// returns identical bytes.
func (s *Spec) Encode() []byte {
	out := make([]byte, len(s.encoded))
	copy(out, s.encoded)
	return out
}

func encodeSpec(s *Spec) []byte {
	w := binary.NewWriter()
	w.WriteBytes(magic[:])
	w.Byte(FormatVersion)
	w.WriteU32(uint32(len(s.entries)))
	for _, e := range s.entries {
		writeEntry(w, e)
	}
	return w.Bytes()
}

func writeEntry(w *binary.Writer, e Entry) {
	switch e := e.(type) {
	case FunctionEntry:
		w.Byte(entryFunction)
		w.WriteName(e.Name)
		w.WriteName(e.Doc)
		w.WriteU32(uint32(len(e.Params)))
		for _, p := range e.Params {
			w.WriteName(p.Name)
			writeType(w, p.Type)
		}
		writeType(w, e.Return)
	case StructEntry:
		w.Byte(entryStruct)
		w.WriteName(e.Name)
		w.WriteName(e.Doc)
		w.WriteU32(uint32(len(e.Fields)))
		for _, f := range e.Fields {
			w.WriteName(f.Name)
			writeType(w, f.Type)
		}
	case UnionEntry:
		w.Byte(entryUnion)
		w.WriteName(e.Name)
		w.WriteName(e.Doc)
		w.WriteU32(uint32(len(e.Cases)))
		for _, c := range e.Cases {
			w.WriteName(c.Name)
			if c.Payload == nil {
				w.Byte(0)
			} else {
				w.Byte(1)
				writeType(w, c.Payload)
			}
		}
	case EnumEntry:
		w.Byte(entryEnum)
		w.WriteName(e.Name)
		w.WriteName(e.Doc)
		writeEnumCases(w, e.Cases)
	case ErrorEnumEntry:
		w.Byte(entryErrorEnum)
		w.WriteName(e.Name)
		w.WriteName(e.Doc)
		writeEnumCases(w, e.Cases)
	}
}

func writeEnumCases(w *binary.Writer, cases []EnumCase) {
	w.WriteU32(uint32(len(cases)))
	for _, c := range cases {
		w.WriteName(c.Name)
		w.WriteU32(c.Value)
	}
}

func writeType(w *binary.Writer, t TypeRef) {
	switch t := t.(type) {
	case Prim:
		w.Byte(byte(t))
	case Vec:
		w.Byte(refVec)
		writeType(w, t.Elem)
	case Map:
		w.Byte(refMap)
		writeType(w, t.Key)
		writeType(w, t.Value)
	case Option:
		w.Byte(refOption)
		writeType(w, t.Elem)
	case Result:
		w.Byte(refResult)
		writeType(w, t.OK)
		writeType(w, t.Err)
	case Named:
		w.Byte(refNamed)
		w.WriteName(t.Name)
	}
}
