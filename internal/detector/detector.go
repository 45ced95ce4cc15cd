package detector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trendyol/go-triton-client/base"
	tritonGrpc "github.com/Trendyol/go-triton-client/client/grpc"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"signsight/internal/config"
	"signsight/internal/dao"
	"signsight/pkg/log"
)

// Detector locates objects in a single BGR frame. Box coordinates are in the
// pixel space of the frame passed in.
type Detector interface {
	Detect(ctx context.Context, frame *gocv.Mat) ([]*dao.DetectionBox, error)
}

// TritonDetector runs a detection model hosted by a Triton inference server.
// The model takes a FRAME input of shape [rows, cols, 3] UINT8 and returns
// DETECTIONS as a flat float32 slice of [x1, y1, x2, y2, confidence, class_id]
// rows.
type TritonDetector struct {
	client       base.Client
	modelName    string
	modelVersion string
	labelMap     map[int]string
	timeout      time.Duration
	logger       *logrus.Entry
}

func NewTritonDetector(conf config.TritonConfig) (*TritonDetector, error) {
	client, err := tritonGrpc.NewClient(
		conf.ServerAddr,
		false, // verbose logging
		30,    // connection timeout in seconds
		30,    // network timeout in seconds
		false, // use ssl
		true,  // insecure connection
		nil,   // existing grpc connection
		nil,   // logger
	)
	if err != nil {
		return nil, fmt.Errorf("create triton client: %w", err)
	}

	version := conf.ModelVersion
	if version == "" {
		version = "1"
	}

	return &TritonDetector{
		client:       client,
		modelName:    conf.ModelName,
		modelVersion: version,
		labelMap:     conf.GetLabelMap(),
		timeout:      conf.RequestTimeout(),
		logger:       log.NewLogger().WithField("component", "detector"),
	}, nil
}

// Ready checks that the server is live and the model is loaded.
func (d *TritonDetector) Ready(ctx context.Context) error {
	if isLive, err := d.client.IsServerLive(ctx, nil); err != nil {
		return err
	} else if !isLive {
		return errors.New("triton server is not live")
	}

	if isReady, err := d.client.IsServerReady(ctx, nil); err != nil {
		return err
	} else if !isReady {
		return errors.New("triton server is not ready")
	}

	if isReady, err := d.client.IsModelReady(ctx, d.modelName, d.modelVersion, nil); err != nil {
		return err
	} else if !isReady {
		return fmt.Errorf("triton model %s is not ready", d.modelName)
	}
	return nil
}

func (d *TritonDetector) Detect(ctx context.Context, frame *gocv.Mat) ([]*dao.DetectionBox, error) {
	if frame.Channels() != 3 {
		return nil, fmt.Errorf("expected 3 channel frame, got %d", frame.Channels())
	}

	frameInput := tritonGrpc.NewInferInput("FRAME", "BYTES", []int64{int64(frame.Rows()), int64(frame.Cols()), 3}, nil)
	if err := frameInput.SetData(frame.ToBytes(), true); err != nil {
		return nil, fmt.Errorf("failed to set FRAME input data: %w", err)
	}
	frameInput.SetDatatype("UINT8")

	outputs := []base.InferOutput{
		tritonGrpc.NewInferOutput("DETECTIONS", map[string]any{"binary_data": false}),
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	response, err := d.client.Infer(
		ctx,
		d.modelName,
		d.modelVersion,
		[]base.InferInput{frameInput},
		outputs,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	detections, err := response.AsFloat32Slice("DETECTIONS")
	if err != nil {
		return nil, fmt.Errorf("failed to get detection data: %w", err)
	}

	return ParseDetections(detections, d.labelMap), nil
}

// ParseDetections decodes rows of [x1, y1, x2, y2, confidence, class_id].
// A trailing partial row is ignored. Class ids missing from labelMap are
// named "class_<id>".
func ParseDetections(detections []float32, labelMap map[int]string) []*dao.DetectionBox {
	var boxes []*dao.DetectionBox
	for i := 0; i+5 < len(detections); i += 6 {
		classID := int(detections[i+5])
		className, exists := labelMap[classID]
		if !exists || className == "" {
			className = fmt.Sprintf("class_%d", classID)
		}

		boxes = append(boxes, &dao.DetectionBox{
			X1:         int(detections[i]),
			Y1:         int(detections[i+1]),
			X2:         int(detections[i+2]),
			Y2:         int(detections[i+3]),
			Confidence: detections[i+4],
			ClassId:    classID,
			Label:      className,
		})
	}
	return boxes
}
