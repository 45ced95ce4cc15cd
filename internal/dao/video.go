package dao

import "time"

type ProcessedVideo struct {
	Name          string         `json:"name"`
	Source        string         `json:"source"`
	Url           string         `json:"url"`
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	FPS           float64        `json:"fps"`
	FramesRead    int            `json:"framesRead"`
	FramesWritten int            `json:"framesWritten"`
	Detections    int            `json:"detections"`
	LabelCounts   map[string]int `json:"labelCounts,omitempty"`
	DurationMs    int64          `json:"durationMs"`
	CreateTime    string         `json:"createTime"`
	ObjectPath    string         `json:"objectPath,omitempty"`
}

func (v *ProcessedVideo) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, v.CreateTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (v *ProcessedVideo) ToMessage() *VideoMessage {
	return &VideoMessage{
		Name:        v.Name,
		Source:      v.Source,
		Timestamp:   v.CreatedAt().UnixNano(),
		ObjectPath:  v.ObjectPath,
		Frames:      v.FramesWritten,
		Detections:  v.Detections,
		LabelCounts: v.LabelCounts,
	}
}

type ListVideosRequest struct {
	Start int `json:"start" form:"start" binding:"min=0"`
	Limit int `json:"limit" form:"limit" binding:"min=0,max=50"`
}

type ListVideosResponse struct {
	Items []ProcessedVideo `json:"items"`
	Total int64            `json:"total"`
}
