package detect

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var overlayColor = color.RGBA{255, 0, 0, 0}

// DrawOverlay renders the operator overlay onto img in place:
// crosshairs through the image center, and when found is true, a
// marker at the centroid plus the native-coordinate and measurement
// labels. nativeX/nativeY are the centroid rescaled to sensor
// coordinates and appear only in the label text.
func DrawOverlay(img *gocv.Mat, m Measurement, found bool, nativeX, nativeY int) {
	w := img.Cols()
	h := img.Rows()

	gocv.Line(img, image.Pt(0, h/2), image.Pt(w, h/2), overlayColor, 2)
	gocv.Line(img, image.Pt(w/2, 0), image.Pt(w/2, h), overlayColor, 2)

	if !found {
		return
	}

	gocv.Circle(img, m.Centroid, 5, overlayColor, 2)
	gocv.PutText(img,
		fmt.Sprintf("(%d, %d)", nativeX, nativeY),
		image.Pt(m.Centroid.X+10, m.Centroid.Y+10),
		gocv.FontHersheySimplex, 0.5, overlayColor, 1)
	gocv.PutText(img,
		fmt.Sprintf("Diameter: %.2f px", m.Diameter),
		image.Pt(10, 20),
		gocv.FontHersheySimplex, 0.5, overlayColor, 1)
	gocv.PutText(img,
		fmt.Sprintf("Circularity: %.2f", m.Circularity),
		image.Pt(10, 40),
		gocv.FontHersheySimplex, 0.5, overlayColor, 1)
}
