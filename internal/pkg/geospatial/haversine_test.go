package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_BilbaoToGetxo(t *testing.T) {
	d := Haversine(43.2630, -2.9350, 43.3569, -3.0114)
	if math.Abs(d-12100) > 600 {
		t.Errorf("expected ~12.1km, got %.0fm", d)
	}
	if Haversine(10, 10, 10, 10) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestBoundingBox_Contains(t *testing.T) {
	box := BoundingBox(23.02, 72.57, 5000)
	if !box.Contains(23.03, 72.58) {
		t.Error("nearby point should be inside the box")
	}
	if box.Contains(21.17, 72.83) {
		t.Error("Surat should be outside a 5km box around Ahmedabad")
	}
}

func TestValidCoordinate(t *testing.T) {
	if !ValidCoordinate(-90, 180) {
		t.Error("bounds are inclusive")
	}
	if ValidCoordinate(91, 0) || ValidCoordinate(0, -181) {
		t.Error("out of range coordinates must be rejected")
	}
}
