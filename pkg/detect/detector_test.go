package detect

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

var white = color.RGBA{255, 255, 255, 0}

func blankFrame(w, h int) gocv.Mat {
	return gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
}

func TestMeasure_FilledCircle(t *testing.T) {
	tests := []struct {
		name   string
		center image.Point
		radius int
	}{
		{"centered r=50", image.Pt(640, 360), 50},
		{"off-center r=30", image.Pt(200, 150), 30},
		{"large r=120", image.Pt(700, 400), 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := blankFrame(1280, 720)
			defer img.Close()
			gocv.Circle(&img, tt.center, tt.radius, white, -1)

			m, found := Measure(img)
			if !found {
				t.Fatal("no region found")
			}

			if dx := math.Abs(float64(m.Centroid.X - tt.center.X)); dx > 1 {
				t.Errorf("centroid X = %d, want %d +-1", m.Centroid.X, tt.center.X)
			}
			if dy := math.Abs(float64(m.Centroid.Y - tt.center.Y)); dy > 1 {
				t.Errorf("centroid Y = %d, want %d +-1", m.Centroid.Y, tt.center.Y)
			}

			wantDiameter := float64(2 * tt.radius)
			if math.Abs(m.Diameter-wantDiameter)/wantDiameter > 0.05 {
				t.Errorf("diameter = %.2f, want ~%.0f", m.Diameter, wantDiameter)
			}

			if m.Circularity < 0.85 || m.Circularity > 1.1 {
				t.Errorf("circularity = %.3f, want ~1.0", m.Circularity)
			}
		})
	}
}

func TestMeasure_LargestRegionWins(t *testing.T) {
	img := blankFrame(1280, 720)
	defer img.Close()

	gocv.Circle(&img, image.Pt(300, 300), 20, white, -1)
	gocv.Circle(&img, image.Pt(900, 400), 80, white, -1)

	m, found := Measure(img)
	if !found {
		t.Fatal("no region found")
	}
	if math.Abs(float64(m.Centroid.X-900)) > 2 || math.Abs(float64(m.Centroid.Y-400)) > 2 {
		t.Errorf("centroid = %v, want the larger blob at ~(900,400)", m.Centroid)
	}
}

func TestMeasure_ElongatedShapeLowCircularity(t *testing.T) {
	img := blankFrame(1280, 720)
	defer img.Close()

	// 400x20 bar: far from circular.
	gocv.Rectangle(&img, image.Rect(400, 350, 800, 370), white, -1)

	m, found := Measure(img)
	if !found {
		t.Fatal("no region found")
	}
	if m.Circularity > 0.5 {
		t.Errorf("circularity = %.3f for a 20:1 bar, want < 0.5", m.Circularity)
	}
}

func TestMeasure_EmptyImageNotFound(t *testing.T) {
	img := blankFrame(1280, 720)
	defer img.Close()

	if _, found := Measure(img); found {
		t.Error("found a region in an all-black image")
	}
}

func TestMeasure_SinglePixelNotFound(t *testing.T) {
	img := blankFrame(640, 480)
	defer img.Close()

	// One bright pixel yields a degenerate zero-perimeter contour;
	// the guards must return not-found rather than divide by zero.
	img.SetUCharAt(240, 320*3+0, 255)
	img.SetUCharAt(240, 320*3+1, 255)
	img.SetUCharAt(240, 320*3+2, 255)

	m, found := Measure(img)
	if found && (m.Perimeter == 0 || math.IsNaN(m.Circularity) || math.IsInf(m.Circularity, 0)) {
		t.Errorf("degenerate region leaked through: %+v", m)
	}
}
