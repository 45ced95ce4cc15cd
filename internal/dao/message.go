package dao

import "fmt"

type DetectionBox struct {
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Confidence float32 `json:"confidence"`
	ClassId    int     `json:"classId"`
	Label      string  `json:"label"`
}

// Caption is the text burned above the box, e.g. "stop: 0.87".
func (b *DetectionBox) Caption() string {
	return fmt.Sprintf("%s: %.2f", b.Label, b.Confidence)
}

// VideoMessage is published on the NSQ topic once a video is processed.
type VideoMessage struct {
	Name        string         `json:"name"`
	Source      string         `json:"source"`
	Timestamp   int64          `json:"timestamp"`
	ObjectPath  string         `json:"objectPath,omitempty"`
	Frames      int            `json:"frames"`
	Detections  int            `json:"detections"`
	LabelCounts map[string]int `json:"labelCounts,omitempty"`
}
