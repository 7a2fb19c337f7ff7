package llvm

import "testing"

func TestNegotiateFeatures(t *testing.T) {
	tests := []struct {
		version         string
		alignArg        bool
		experimentalRed bool
	}{
		{"6.0.1", true, true},
		{"7.0.0", false, true},
		{"11.1.0", false, true},
		{"12.0.0", false, false},
		{"14.0.6", false, false},
	}

	for _, test := range tests {
		fs := NegotiateFeatures(test.version)

		if fs.MemoryIntrinsicAlignArg != test.alignArg {
			t.Errorf("version %s: expected align-arg=%v, got %v",
				test.version, test.alignArg, fs.MemoryIntrinsicAlignArg)
		}

		if fs.ExperimentalReductions != test.experimentalRed {
			t.Errorf("version %s: expected experimental-reductions=%v, got %v",
				test.version, test.experimentalRed, fs.ExperimentalReductions)
		}

		if fs.Version() != test.version {
			t.Errorf("version %s: read back %s", test.version, fs.Version())
		}
	}
}

func TestContextCarriesFeatures(t *testing.T) {
	ctx := NewContext("12.0.1")
	defer ctx.Dispose()

	if ctx.Features().ExperimentalReductions {
		t.Errorf("feature set not negotiated from the context's backend version")
	}
}
