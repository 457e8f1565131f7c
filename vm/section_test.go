package vm

import (
	"bytes"
	"testing"

	"github.com/wippyai/contract-sdk/spec"
)

// emptyModule is the smallest valid wasm binary: magic plus version.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestSpecSectionRoundTrip(t *testing.T) {
	payload := []byte{0xca, 0xfe, 0x01, 0x02, 0x03}
	wasm := AppendSpecSection(emptyModule, payload)

	got, err := ReadSpecSection(wasm)
	if err != nil {
		t.Fatalf("ReadSpecSection failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %v, want %v", got, payload)
	}
}

func TestSpecSectionSkipsOtherSections(t *testing.T) {
	// A foreign custom section before ours must be skipped, not
	// mistaken for the spec.
	wasm := append([]byte(nil), emptyModule...)
	other := []byte{4, 'n', 'a', 'm', 'e', 0xff}
	wasm = append(wasm, 0, byte(len(other)))
	wasm = append(wasm, other...)

	payload := []byte{1, 2, 3}
	wasm = AppendSpecSection(wasm, payload)

	got, err := ReadSpecSection(wasm)
	if err != nil {
		t.Fatalf("ReadSpecSection failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %v", got)
	}
}

func TestSpecSectionErrors(t *testing.T) {
	tests := []struct {
		name string
		wasm []byte
	}{
		{"empty", nil},
		{"not wasm", []byte("GIF89a..")},
		{"no section", emptyModule},
		{"truncated section", append(append([]byte(nil), emptyModule...), 0, 200, 1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSpecSection(tt.wasm); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEmbeddedSpecDecodes(t *testing.T) {
	b := spec.NewBuilder()
	b.Add(spec.FunctionEntry{
		Name:   "ping",
		Return: spec.PrimU32,
	})
	s, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}

	wasm := AppendSpecSection(emptyModule, s.Encode())
	data, err := ReadSpecSection(wasm)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := spec.Decode(data)
	if err != nil {
		t.Fatalf("embedded spec did not decode: %v", err)
	}
	if !spec.Equal(s, decoded) {
		t.Error("embedded spec not equal after round trip")
	}
}
