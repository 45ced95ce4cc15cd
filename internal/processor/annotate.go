package processor

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"signsight/internal/dao"
)

var boxColor = color.RGBA{0, 255, 0, 255}

const (
	boxThickness   = 2
	labelOffset    = 10
	labelFontScale = 0.5
	labelThickness = 2
)

// DrawDetections burns a rectangle and a "<label>: <confidence>" caption for
// every box into frame. The caption baseline sits 10px above the box.
func DrawDetections(frame *gocv.Mat, boxes []*dao.DetectionBox) {
	for _, box := range boxes {
		gocv.Rectangle(frame, image.Rect(box.X1, box.Y1, box.X2, box.Y2), boxColor, boxThickness)
		gocv.PutText(frame, box.Caption(), image.Pt(box.X1, box.Y1-labelOffset),
			gocv.FontHersheySimplex, labelFontScale, boxColor, labelThickness)
	}
}

// scaleBoxes drops boxes under threshold and maps the rest from inference
// resolution back to frame resolution.
func scaleBoxes(boxes []*dao.DetectionBox, threshold float32, sx, sy float64) []*dao.DetectionBox {
	kept := make([]*dao.DetectionBox, 0, len(boxes))
	for _, box := range boxes {
		if box.Confidence < threshold {
			continue
		}
		if sx != 1 || sy != 1 {
			box.X1 = int(math.Round(float64(box.X1) * sx))
			box.Y1 = int(math.Round(float64(box.Y1) * sy))
			box.X2 = int(math.Round(float64(box.X2) * sx))
			box.Y2 = int(math.Round(float64(box.Y2) * sy))
		}
		kept = append(kept, box)
	}
	return kept
}
