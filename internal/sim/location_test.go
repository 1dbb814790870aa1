package sim

import "testing"

func TestLocationGeometry(t *testing.T) {
	loc := Location{X: 10, Y: 20, Size: 40, Kind: QuarantineLocation}

	if x, y := loc.Center(); x != 30 || y != 40 {
		t.Fatalf("expected center 30,40, got %v,%v", x, y)
	}
	left, right, top, bottom := loc.Bounds()
	if left != 10 || right != 50 || top != 20 || bottom != 60 {
		t.Fatalf("unexpected bounds %v %v %v %v", left, right, top, bottom)
	}
	for _, p := range [][2]float64{{10, 20}, {50, 60}, {30, 40}} {
		if !loc.Contains(p[0], p[1]) {
			t.Fatalf("expected %v to be inside", p)
		}
	}
	for _, p := range [][2]float64{{9.9, 30}, {30, 60.1}} {
		if loc.Contains(p[0], p[1]) {
			t.Fatalf("expected %v to be outside", p)
		}
	}
	if loc.Kind.String() != "quarantine" || CentralLocation.String() != "central" {
		t.Fatalf("unexpected kind names %q %q", loc.Kind, CentralLocation)
	}
}
