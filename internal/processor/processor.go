package processor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"signsight/internal/config"
	"signsight/internal/dao"
	"signsight/internal/detector"
	"signsight/internal/metrics"
	"signsight/pkg/log"
)

const (
	// ProcessedPrefix is prepended to the source filename to name the output.
	ProcessedPrefix = "processed_"
	// partialPrefix marks an output still being encoded.
	partialPrefix = ".partial_"
)

var (
	// ErrOpenVideo means the input could not be decoded or has no usable geometry.
	ErrOpenVideo = errors.New("cannot open video")
	// ErrNoFrames means the input opened but yielded no frame.
	ErrNoFrames = errors.New("no decodable frames")
)

// Processor turns an uploaded video into an annotated copy.
type Processor struct {
	detector  detector.Detector
	conf      config.ProcessorConfig
	outputDir string
}

// NewProcessor returns a Processor writing annotated videos into outputDir.
func NewProcessor(det detector.Detector, conf config.ProcessorConfig, outputDir string) *Processor {
	if conf.Codec == "" {
		conf.Codec = "mp4v"
	}
	return &Processor{
		detector:  det,
		conf:      conf,
		outputDir: outputDir,
	}
}

func OutputName(videoPath string) string {
	return ProcessedPrefix + filepath.Base(videoPath)
}

// Process decodes videoPath frame by frame, runs the detector on each frame,
// draws the detections and encodes the result next to the other processed
// videos. The output is encoded under a partial name and renamed into place
// on success, so a failed run leaves any earlier output of the same name as
// it was.
func (p *Processor) Process(ctx context.Context, videoPath string) (*dao.ProcessedVideo, error) {
	start := time.Now()
	logger := log.GetLogger(ctx).WithFields(logrus.Fields{
		"component": "processor",
		"video":     filepath.Base(videoPath),
	})
	name := OutputName(videoPath)
	outputPath := filepath.Join(p.outputDir, name)
	partialPath := filepath.Join(p.outputDir, partialPrefix+name)

	result, err := p.process(ctx, logger, videoPath, partialPath)
	if err == nil {
		if err = os.Rename(partialPath, outputPath); err != nil {
			err = fmt.Errorf("move output into place: %w", err)
		}
	}
	if err != nil {
		if rmErr := os.Remove(partialPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.WithError(rmErr).Warn("remove partial output failed")
		}
		logger.WithError(err).Error("process video failed")
		metrics.VideosProcessedTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	elapsed := time.Since(start)
	result.DurationMs = elapsed.Milliseconds()
	result.CreateTime = time.Now().Format(time.RFC3339Nano)

	metrics.VideosProcessedTotal.WithLabelValues("completed").Inc()
	metrics.VideoProcessingDuration.Observe(elapsed.Seconds())

	logger.WithFields(logrus.Fields{
		"output":     result.Name,
		"frames":     result.FramesWritten,
		"detections": result.Detections,
		"elapsed":    elapsed,
	}).Info("video processed")
	return result, nil
}

func (p *Processor) process(ctx context.Context, logger *logrus.Entry, videoPath, outputPath string) (*dao.ProcessedVideo, error) {
	input, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrOpenVideo, videoPath, err)
	}
	defer input.Close()

	fps := input.Get(gocv.VideoCaptureFPS)
	width := int(input.Get(gocv.VideoCaptureFrameWidth))
	height := int(input.Get(gocv.VideoCaptureFrameHeight))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w %s: invalid dimensions %dx%d", ErrOpenVideo, videoPath, width, height)
	}
	if fps <= 0 || math.IsNaN(fps) {
		return nil, fmt.Errorf("%w %s: invalid frame rate %v", ErrOpenVideo, videoPath, fps)
	}
	logger.Infof("video properties: %dx%d @ %.2f FPS", width, height, fps)

	output, err := gocv.VideoWriterFile(outputPath, p.conf.Codec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("open output video %s: %w", outputPath, err)
	}
	defer output.Close()
	if !output.IsOpened() {
		return nil, fmt.Errorf("open output video %s with codec %s failed", outputPath, p.conf.Codec)
	}

	result := &dao.ProcessedVideo{
		Name:        OutputName(videoPath),
		Source:      filepath.Base(videoPath),
		Width:       width,
		Height:      height,
		FPS:         fps,
		LabelCounts: make(map[string]int),
	}

	frame := gocv.NewMat()
	defer frame.Close()

	lastLogTime := time.Now()
	windowFrames := 0
	windowInference := time.Duration(0)

	for {
		if ok := input.Read(&frame); !ok || frame.Empty() {
			break
		}
		result.FramesRead++

		inferStart := time.Now()
		boxes, err := p.detect(ctx, &frame)
		if err != nil {
			return nil, fmt.Errorf("detect frame %d: %w", result.FramesRead, err)
		}
		inferTime := time.Since(inferStart)
		metrics.InferenceDuration.Observe(inferTime.Seconds())

		DrawDetections(&frame, boxes)
		for _, box := range boxes {
			result.LabelCounts[box.Label]++
			metrics.DetectionsTotal.WithLabelValues(box.Label).Inc()
		}
		result.Detections += len(boxes)

		if err := output.Write(frame); err != nil {
			return nil, fmt.Errorf("write frame %d: %w", result.FramesRead, err)
		}
		result.FramesWritten++
		metrics.FramesProcessedTotal.Inc()

		windowFrames++
		windowInference += inferTime
		if time.Since(lastLogTime) > 5*time.Second {
			logger.Infof("processed %d frames in %v, avg inference time: %v",
				windowFrames, windowInference, windowInference/time.Duration(windowFrames))
			lastLogTime = time.Now()
			windowFrames = 0
			windowInference = 0
		}
	}

	if result.FramesRead == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, videoPath)
	}
	return result, nil
}

// detect runs the detector, downsampling first when the frame is wider than
// the configured inference width. Returned boxes are in frame coordinates.
func (p *Processor) detect(ctx context.Context, frame *gocv.Mat) ([]*dao.DetectionBox, error) {
	target := frame
	sx, sy := 1.0, 1.0

	if w := p.conf.InferenceWidth; w > 0 && frame.Cols() > w {
		h := int(math.Round(float64(frame.Rows()) * float64(w) / float64(frame.Cols())))
		if h < 1 {
			h = 1
		}
		small := gocv.NewMat()
		defer small.Close()
		gocv.Resize(*frame, &small, image.Pt(w, h), 0, 0, gocv.InterpolationArea)

		target = &small
		sx = float64(frame.Cols()) / float64(w)
		sy = float64(frame.Rows()) / float64(h)
	}

	boxes, err := p.detector.Detect(ctx, target)
	if err != nil {
		return nil, err
	}
	return scaleBoxes(boxes, p.conf.ConfThreshold, sx, sy), nil
}
