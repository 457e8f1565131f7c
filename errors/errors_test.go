package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want []string
	}{
		{
			name: "phase and kind",
			err:  New(PhaseDecode, KindWrongTag).Build(),
			want: []string{"[decode]", "wrong_tag"},
		},
		{
			name: "with path",
			err:  New(PhaseDecode, KindMissingField).Path("Point", "y").Build(),
			want: []string{"at Point.y"},
		},
		{
			name: "with types",
			err:  TypeMismatch(PhaseCompile, nil, "int16", "i32"),
			want: []string{"Go type int16", "spec type i32"},
		},
		{
			name: "with detail and cause",
			err:  Wrap(PhaseLoad, KindInvalidData, stderrors.New("boom"), "read section"),
			want: []string{"read section", "caused by: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("Error() = %q, missing %q", msg, w)
				}
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := WrongTag(PhaseDecode, nil, "i32", "u32")
	if !stderrors.Is(err, &Error{Phase: PhaseDecode, Kind: KindWrongTag}) {
		t.Error("Is should match on phase and kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseEncode, Kind: KindWrongTag}) {
		t.Error("Is should not match a different phase")
	}
}

func TestBuilderChaining(t *testing.T) {
	err := New(PhaseDecode, KindOutOfRange).
		Path("balance").
		GoType("uint32").
		SpecType("u32").
		Value(int64(-1)).
		Detail("value %d", -1).
		Build()

	if err.Phase != PhaseDecode || err.Kind != KindOutOfRange {
		t.Errorf("unexpected phase/kind: %v/%v", err.Phase, err.Kind)
	}
	if err.Value != int64(-1) {
		t.Errorf("Value = %v, want -1", err.Value)
	}
	if err.Detail != "value -1" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestSpecConstructorsNameDeclaration(t *testing.T) {
	err := UnresolvedReference("transfer", "Asset")
	if !strings.Contains(err.Error(), "transfer") || !strings.Contains(err.Error(), "Asset") {
		t.Errorf("message must name the offending declaration: %q", err.Error())
	}

	cyc := RecursiveType([]string{"Tree", "Node", "Tree"})
	if !strings.Contains(cyc.Error(), "Tree -> Node -> Tree") {
		t.Errorf("cycle not reported: %q", cyc.Error())
	}
}

func TestInvocationErrorSides(t *testing.T) {
	hostErr := InvokeHostFailure("add", stderrors.New("trap"))
	if hostErr.IsDecodeFailure() {
		t.Error("host failure reported as decode failure")
	}
	if !strings.Contains(hostErr.Error(), "host rejected") {
		t.Errorf("unexpected message: %q", hostErr.Error())
	}

	decErr := InvokeDecodeFailure("add", WrongTag(PhaseDecode, nil, "void", "i32"))
	if !decErr.IsDecodeFailure() {
		t.Error("decode failure not reported as such")
	}
	var conv *Error
	if !stderrors.As(decErr, &conv) {
		t.Error("decode cause should unwrap to *Error")
	}
}
