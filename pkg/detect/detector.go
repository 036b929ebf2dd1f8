// Package detect locates the dominant bright region in a frame and
// measures it. The pipeline feeds it display-resolution images; the
// functions here hold no state and are safe to call from any goroutine.
package detect

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Measurement describes the primary detected region.
type Measurement struct {
	// Centroid in pixel coordinates of the analyzed image, truncated
	// to whole pixels.
	Centroid image.Point

	// Diameter of the circle with the same area as the region, in
	// pixels of the analyzed image.
	Diameter float64

	// Circularity is 4*pi*area/perimeter^2: 1.0 for a perfect circle,
	// lower for elongated shapes. Discretization can push it slightly
	// above 1 for small regions.
	Circularity float64

	// Area and Perimeter of the selected boundary, for diagnostics.
	Area      float64
	Perimeter float64
}

// Measure finds the largest bright region in img and returns its
// centroid, equivalent diameter, and circularity. The second return is
// false when no region is found or the region is degenerate (zero
// area moment or zero perimeter).
//
// img must be a 3-channel BGR image. The caller keeps ownership.
func Measure(img gocv.Mat) (Measurement, bool) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return Measurement{}, false
	}

	// Largest enclosed area wins: single-object assumption.
	best := 0
	bestArea := gocv.ContourArea(contours.At(0))
	for i := 1; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > bestArea {
			best = i
			bestArea = a
		}
	}

	// gocv exposes raster moments only, so rasterize the winning
	// contour into a mask and take moments there.
	mask := gocv.Zeros(bin.Rows(), bin.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()
	gocv.DrawContours(&mask, contours, best, color.RGBA{255, 255, 255, 0}, -1)

	m := gocv.Moments(mask, true)
	m00 := m["m00"]
	if m00 == 0 {
		return Measurement{}, false
	}

	perimeter := gocv.ArcLength(contours.At(best), true)
	if perimeter == 0 {
		return Measurement{}, false
	}

	return Measurement{
		Centroid:    image.Pt(int(m["m10"]/m00), int(m["m01"]/m00)),
		Diameter:    math.Sqrt(4 * bestArea / math.Pi),
		Circularity: 4 * math.Pi * bestArea / (perimeter * perimeter),
		Area:        bestArea,
		Perimeter:   perimeter,
	}, true
}
