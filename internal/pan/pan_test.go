package pan

import (
	"strings"
	"testing"
)

func TestMaskShape(t *testing.T) {
	for _, in := range []string{"5167940123453315", "378282246310005", "1234567890", "4111111111111111111"} {
		got := Mask(in)
		if len(got) != len(in) {
			t.Fatalf("mask(%q) changed length: %q", in, got)
		}
		if !strings.HasPrefix(got, in[:6]) {
			t.Fatalf("mask(%q) lost prefix: %q", in, got)
		}
		if !strings.HasSuffix(got, in[len(in)-4:]) {
			t.Fatalf("mask(%q) lost suffix: %q", in, got)
		}
		middle := got[6 : len(got)-4]
		if strings.Trim(middle, "*") != "" {
			t.Fatalf("mask(%q) middle not redacted: %q", in, got)
		}
	}
}

func TestMaskKnownValue(t *testing.T) {
	if got := Mask("5167940123453315"); got != "516794******3315" {
		t.Fatalf("unexpected mask: %q", got)
	}
}

func TestMaskShortValueUnchanged(t *testing.T) {
	for _, in := range []string{"", "1", "123456789", "ABCDEFGHI"} {
		if got := Mask(in); got != in {
			t.Fatalf("mask(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestMaskAllMasksEveryCardRun(t *testing.T) {
	in := "CARTE 5167940123453315 / 4111111111111111"
	want := "CARTE 516794******3315 / 411111******1111"
	if got := MaskAll(in); got != want {
		t.Fatalf("MaskAll = %q, want %q", got, want)
	}
}

func TestMaskAllLeavesOtherDigitRuns(t *testing.T) {
	in := "STAN 000123 AMT 10050 LONG 12345678901234567 SHORT 123456789012345"
	if got := MaskAll(in); got != in {
		t.Fatalf("MaskAll touched non-card runs: %q", got)
	}
}

func TestMaskAllAtStringEdges(t *testing.T) {
	in := "5167940123453315x4111111111111111"
	want := "516794******3315x411111******1111"
	if got := MaskAll(in); got != want {
		t.Fatalf("MaskAll = %q, want %q", got, want)
	}
}
