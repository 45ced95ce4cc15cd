package processor

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"signsight/internal/config"
	"signsight/internal/dao"
)

type fakeDetector struct {
	boxes func() []*dao.DetectionBox
	err   error
	sizes []image.Point
}

func (f *fakeDetector) Detect(ctx context.Context, frame *gocv.Mat) ([]*dao.DetectionBox, error) {
	f.sizes = append(f.sizes, image.Pt(frame.Cols(), frame.Rows()))
	if f.err != nil {
		return nil, f.err
	}
	if f.boxes == nil {
		return nil, nil
	}
	return f.boxes(), nil
}

func testProcessorConfig() config.ProcessorConfig {
	return config.ProcessorConfig{Codec: "MJPG", ConfThreshold: 0.25}
}

// writeTestVideo encodes n solid gray frames as an MJPG avi.
func writeTestVideo(t *testing.T, path string, n, width, height int, fps float64) {
	t.Helper()
	writer, err := gocv.VideoWriterFile(path, "MJPG", fps, width, height, true)
	require.NoError(t, err)
	require.True(t, writer.IsOpened())
	defer writer.Close()

	frame := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(64, 64, 64, 0))
	for i := 0; i < n; i++ {
		require.NoError(t, writer.Write(frame))
	}
}

type videoInfo struct {
	width, height int
	fps           float64
	frames        []gocv.Mat
}

func (v *videoInfo) Close() {
	for _, f := range v.frames {
		f.Close()
	}
}

func readVideo(t *testing.T, path string) *videoInfo {
	t.Helper()
	capture, err := gocv.VideoCaptureFile(path)
	require.NoError(t, err)
	defer capture.Close()

	info := &videoInfo{
		width:  int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height: int(capture.Get(gocv.VideoCaptureFrameHeight)),
		fps:    capture.Get(gocv.VideoCaptureFPS),
	}
	for {
		frame := gocv.NewMat()
		if ok := capture.Read(&frame); !ok || frame.Empty() {
			frame.Close()
			break
		}
		info.frames = append(info.frames, frame)
	}
	return info
}

func maxAbsDiff(a, b gocv.Mat) int {
	ab, bb := a.ToBytes(), b.ToBytes()
	if len(ab) != len(bb) {
		return 255
	}
	max := 0
	for i := range ab {
		d := int(ab[i]) - int(bb[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func isGreenish(frame gocv.Mat, row, col int) bool {
	px := frame.GetVecbAt(row, col)
	b, g, r := int(px[0]), int(px[1]), int(px[2])
	return g > 140 && g-b > 60 && g-r > 60
}

func TestProcessKeepsFrameCountAndGeometry(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.avi")
	writeTestVideo(t, input, 12, 64, 48, 10)

	det := &fakeDetector{}
	p := NewProcessor(det, testProcessorConfig(), dir)

	result, err := p.Process(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "processed_clip.avi", result.Name)
	assert.Equal(t, "clip.avi", result.Source)
	assert.Equal(t, 12, result.FramesRead)
	assert.Equal(t, 12, result.FramesWritten)
	assert.Equal(t, 0, result.Detections)
	assert.Len(t, det.sizes, 12)

	out := readVideo(t, filepath.Join(dir, result.Name))
	defer out.Close()
	in := readVideo(t, input)
	defer in.Close()

	assert.Len(t, out.frames, len(in.frames))
	assert.Equal(t, in.width, out.width)
	assert.Equal(t, in.height, out.height)
	assert.InDelta(t, in.fps, out.fps, 0.01)
}

func TestProcessWithoutDetectionsDrawsNothing(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plain.avi")
	writeTestVideo(t, input, 5, 64, 48, 10)

	p := NewProcessor(&fakeDetector{}, testProcessorConfig(), dir)
	result, err := p.Process(context.Background(), input)
	require.NoError(t, err)

	in := readVideo(t, input)
	defer in.Close()
	out := readVideo(t, filepath.Join(dir, result.Name))
	defer out.Close()

	require.Len(t, out.frames, len(in.frames))
	for i := range in.frames {
		// re-encoding a flat frame may shift a value by a step or two; an
		// overlay would show up as a jump to full green.
		assert.LessOrEqual(t, maxAbsDiff(in.frames[i], out.frames[i]), 4, "frame %d", i)
	}
}

func TestProcessDrawsDetections(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "signs.avi")
	writeTestVideo(t, input, 3, 160, 120, 10)

	det := &fakeDetector{boxes: func() []*dao.DetectionBox {
		return []*dao.DetectionBox{
			{X1: 20, Y1: 40, X2: 100, Y2: 100, Confidence: 0.87, Label: "stop"},
			{X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.1, Label: "noise"},
		}
	}}
	p := NewProcessor(det, testProcessorConfig(), dir)
	result, err := p.Process(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Detections)
	assert.Equal(t, map[string]int{"stop": 3}, result.LabelCounts)

	out := readVideo(t, filepath.Join(dir, result.Name))
	defer out.Close()
	require.Len(t, out.frames, 3)
	for _, frame := range out.frames {
		assert.True(t, isGreenish(frame, 40, 60), "top edge")
		assert.True(t, isGreenish(frame, 70, 20), "left edge")
		assert.False(t, isGreenish(frame, 70, 60), "interior")
	}
}

func TestProcessDownsamplesForInference(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "wide.avi")
	writeTestVideo(t, input, 2, 160, 120, 10)

	det := &fakeDetector{boxes: func() []*dao.DetectionBox {
		return []*dao.DetectionBox{{X1: 10, Y1: 20, X2: 40, Y2: 50, Confidence: 0.9, Label: "yield"}}
	}}
	conf := testProcessorConfig()
	conf.InferenceWidth = 80
	p := NewProcessor(det, conf, dir)

	result, err := p.Process(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 160, result.Width)
	assert.Equal(t, 120, result.Height)

	for _, size := range det.sizes {
		assert.Equal(t, image.Pt(80, 60), size)
	}

	out := readVideo(t, filepath.Join(dir, result.Name))
	defer out.Close()
	require.NotEmpty(t, out.frames)
	assert.Equal(t, 160, out.width)
	assert.Equal(t, 120, out.height)
	// box is drawn at (20,40)-(80,100) in full resolution
	assert.True(t, isGreenish(out.frames[0], 40, 50))
	assert.True(t, isGreenish(out.frames[0], 100, 50))
}

func TestProcessCorruptOrEmptyVideo(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.mp4")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	corrupt := filepath.Join(dir, "corrupt.mp4")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not a video stream"), 0644))
	missing := filepath.Join(dir, "missing.mp4")

	p := NewProcessor(&fakeDetector{}, testProcessorConfig(), dir)
	for _, path := range []string{empty, corrupt, missing} {
		result, err := p.Process(context.Background(), path)
		assert.Nil(t, result, path)
		require.Error(t, err, path)
		assert.True(t, errors.Is(err, ErrOpenVideo) || errors.Is(err, ErrNoFrames), path)

		_, statErr := os.Stat(filepath.Join(dir, OutputName(path)))
		assert.True(t, os.IsNotExist(statErr), path)
	}
}

func TestProcessDetectorFailureRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.avi")
	writeTestVideo(t, input, 4, 64, 48, 10)

	det := &fakeDetector{err: errors.New("triton unavailable")}
	p := NewProcessor(det, testProcessorConfig(), dir)

	result, err := p.Process(context.Background(), input)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "triton unavailable")

	_, statErr := os.Stat(filepath.Join(dir, "processed_clip.avi"))
	assert.True(t, os.IsNotExist(statErr))
	assertNoPartialOutputs(t, dir)
}

func TestProcessSameNameTwice(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "again.avi")
	writeTestVideo(t, input, 3, 64, 48, 10)

	p := NewProcessor(&fakeDetector{}, testProcessorConfig(), dir)
	for i := 0; i < 2; i++ {
		result, err := p.Process(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, 3, result.FramesWritten)
	}
}

func assertNoPartialOutputs(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), partialPrefix)
	}
}

func TestProcessFailureKeepsEarlierOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.avi")
	writeTestVideo(t, input, 6, 64, 48, 10)

	p := NewProcessor(&fakeDetector{}, testProcessorConfig(), dir)
	first, err := p.Process(context.Background(), input)
	require.NoError(t, err)
	outputPath := filepath.Join(dir, first.Name)

	// same name again, this time unreadable
	require.NoError(t, os.WriteFile(input, []byte("definitely not a video stream"), 0644))
	result, err := p.Process(context.Background(), input)
	assert.Nil(t, result)
	require.Error(t, err)

	out := readVideo(t, outputPath)
	defer out.Close()
	assert.Len(t, out.frames, 6)
	assertNoPartialOutputs(t, dir)
}

func TestProcessDetectorFailureKeepsEarlierOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.avi")
	writeTestVideo(t, input, 4, 64, 48, 10)

	det := &fakeDetector{}
	p := NewProcessor(det, testProcessorConfig(), dir)
	first, err := p.Process(context.Background(), input)
	require.NoError(t, err)

	det.err = errors.New("triton unavailable")
	_, err = p.Process(context.Background(), input)
	require.Error(t, err)

	out := readVideo(t, filepath.Join(dir, first.Name))
	defer out.Close()
	assert.Len(t, out.frames, 4)
	assertNoPartialOutputs(t, dir)
}
