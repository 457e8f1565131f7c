package vm

import (
	"bytes"
	"fmt"

	"github.com/wippyai/contract-sdk/errors"
	"github.com/wippyai/contract-sdk/internal/binary"
)

// SpecSection is the name of the custom section carrying the interface
// specification blob inside a contract wasm binary.
const SpecSection = "contractspec"

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// ReadSpecSection scans a wasm binary for the contractspec custom
// section and returns its payload.
func ReadSpecSection(wasm []byte) ([]byte, error) {
	r := binary.NewReader(wasm)

	head, err := r.ReadBytes(8)
	if err != nil {
		return nil, errors.Load("wasm binary too short", err)
	}
	if !bytes.Equal(head[:4], wasmMagic) {
		return nil, errors.Load("not a wasm binary", nil)
	}

	for r.Remaining() > 0 {
		id, err := r.Byte()
		if err != nil {
			return nil, errors.Load("truncated section header", err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, errors.Load("truncated section size", err)
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, errors.Load(fmt.Sprintf("truncated section %d", id), err)
		}
		if id != 0 {
			continue
		}
		sr := binary.NewReader(body)
		name, err := sr.ReadName()
		if err != nil {
			return nil, errors.Load("malformed custom section name", err)
		}
		if name == SpecSection {
			return body[sr.Pos():], nil
		}
	}
	return nil, errors.NotFound(errors.PhaseLoad, "custom section", SpecSection)
}

// AppendSpecSection appends a contractspec custom section to a wasm
// binary. Custom sections are valid at any position, so appending
// never disturbs existing sections.
func AppendSpecSection(wasm, specData []byte) []byte {
	body := binary.NewWriter()
	body.WriteName(SpecSection)
	body.WriteBytes(specData)

	w := binary.NewWriter()
	w.WriteBytes(wasm)
	w.Byte(0)
	w.WriteU32(uint32(body.Len()))
	w.WriteBytes(body.Bytes())
	return w.Bytes()
}
