package compositor

import (
	"image"
	"testing"
)

func TestSoftMaskHard(t *testing.T) {
	mask := SoftMask(10, 2, image.Rect(0, 0, 5, 2), 0)
	if mask.AlphaAt(4, 0).A != 255 || mask.AlphaAt(5, 0).A != 0 {
		t.Fatalf("unexpected hard mask edge: %v %v", mask.AlphaAt(4, 0), mask.AlphaAt(5, 0))
	}
}

func TestSoftMaskFeathersBoundary(t *testing.T) {
	mask := SoftMask(200, 4, image.Rect(0, 0, 100, 4), 10)

	if v := mask.AlphaAt(0, 1).A; v < 250 {
		t.Fatalf("deep inside region should stay opaque, got %d", v)
	}
	if v := mask.AlphaAt(199, 1).A; v > 5 {
		t.Fatalf("far outside region should stay transparent, got %d", v)
	}
	edge := mask.AlphaAt(100, 1).A
	if edge == 0 || edge == 255 {
		t.Fatalf("boundary should be feathered, got %d", edge)
	}
	for x := 1; x < 200; x++ {
		if mask.AlphaAt(x, 1).A > mask.AlphaAt(x-1, 1).A {
			t.Fatalf("mask should fall off monotonically, rises at x=%d", x)
		}
	}
}
