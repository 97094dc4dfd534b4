package flake

import "testing"

func TestSetDefaultsBaseline(t *testing.T) {
	var p Params
	if err := SetDefaults(&p, 5); err != nil {
		t.Fatalf("SetDefaults(5): %v", err)
	}
	if p.BlockSize != 4096 || p.PredictionType != PredictionLevinson ||
		p.MaxPredOrder != 8 || p.MaxPartOrder != 5 || p.VariableBlockSize {
		t.Fatalf("level 5 preset = %+v, want the level-5 baseline", p)
	}
}

func TestSetDefaultsLevel0IsFixedOrderTwo(t *testing.T) {
	var p Params
	if err := SetDefaults(&p, 0); err != nil {
		t.Fatalf("SetDefaults(0): %v", err)
	}
	if p.PredictionType != PredictionFixed || p.MinPredOrder != 2 || p.MaxPredOrder != 2 {
		t.Fatalf("level 0 preset = %+v, want fixed order 2..2", p)
	}
	if p.StereoMethod != StereoIndependent {
		t.Fatalf("level 0 should use independent stereo, got %v", p.StereoMethod)
	}
}

func TestSetDefaultsLevel9EnablesVBS(t *testing.T) {
	var p Params
	if err := SetDefaults(&p, 9); err != nil {
		t.Fatalf("SetDefaults(9): %v", err)
	}
	if !p.VariableBlockSize {
		t.Fatalf("level 9 should enable variable block size")
	}
	if p.OrderMethod != OrderLog || p.MaxPredOrder != 12 || p.MaxPartOrder != 8 {
		t.Fatalf("level 9 preset = %+v, unexpected", p)
	}
}

func TestSetDefaultsLevel12(t *testing.T) {
	var p Params
	if err := SetDefaults(&p, 12); err != nil {
		t.Fatalf("SetDefaults(12): %v", err)
	}
	if p.BlockSize != 8192 || p.OrderMethod != OrderSearch || p.MaxPredOrder != 32 {
		t.Fatalf("level 12 preset = %+v, unexpected", p)
	}
}

func TestSetDefaultsRejectsOutOfRange(t *testing.T) {
	var p Params
	if err := SetDefaults(&p, 13); err == nil {
		t.Fatalf("expected an error for compression level 13")
	}
	if err := SetDefaults(&p, -1); err == nil {
		t.Fatalf("expected an error for negative compression level")
	}
}

func TestValidateRejectsInconsistentOrders(t *testing.T) {
	var p Params
	SetDefaults(&p, 5)
	p.MinPredOrder = 10
	p.MaxPredOrder = 2
	if got := p.Validate(2, 44100, 16); got != -1 {
		t.Fatalf("Validate = %d, want -1 for min>max prediction order", got)
	}
}

func TestValidateFlagsOutOfSubsetVBS(t *testing.T) {
	var p Params
	SetDefaults(&p, 9)
	if got := p.Validate(2, 44100, 16); got != 1 {
		t.Fatalf("Validate = %d, want 1 (out-of-Subset) when VBS is enabled", got)
	}
}

func TestValidateAcceptsLevel5AtCDQuality(t *testing.T) {
	var p Params
	SetDefaults(&p, 5)
	if got := p.Validate(2, 44100, 16); got != 0 {
		t.Fatalf("Validate = %d, want 0 for level 5 at 16-bit/44.1kHz stereo", got)
	}
}
