package server

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"signsight/internal/config"
	"signsight/internal/dao"
	"signsight/pkg/log"
)

// VideoProcessor annotates a stored upload and reports the output record.
type VideoProcessor interface {
	Process(ctx context.Context, videoPath string) (*dao.ProcessedVideo, error)
}

// VideoHistory records processed videos for the history API.
type VideoHistory interface {
	SaveVideo(video *dao.ProcessedVideo) error
	GetVideo(name string) (*dao.ProcessedVideo, error)
	ListVideos(start, limit int) ([]dao.ProcessedVideo, int64, error)
}

// VideoPublisher hands a processed video to downstream consumers.
type VideoPublisher interface {
	Publish(ctx context.Context, localPath string, video *dao.ProcessedVideo) error
}

// Server serves the upload form, the processed videos and the history API.
type Server struct {
	conf       *config.Config
	processor  VideoProcessor
	history    VideoHistory
	publisher  VideoPublisher
	httpServer *http.Server
	logger     *logrus.Entry
}

// NewServer wires the upload flow. history and publisher are optional.
func NewServer(ctx context.Context, conf *config.Config, processor VideoProcessor,
	history VideoHistory, publisher VideoPublisher) (*Server, error) {
	if processor == nil {
		return nil, goerrors.New("video processor is required")
	}
	if err := os.MkdirAll(conf.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	s := &Server{
		conf:      conf,
		processor: processor,
		history:   history,
		publisher: publisher,
		logger:    log.GetLogger(ctx).WithField("component", "server"),
	}

	return s, nil
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Header(log.HttpXRequestId, requestId)
		c.Request = c.Request.WithContext(log.WithRequestId(c.Request.Context(), requestId))
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		log.GetLogger(c.Request.Context()).Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

// LimitBodySize rejects requests whose body exceeds max bytes before any
// handler runs. Bodies without a declared length are capped while read.
func LimitBodySize(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

func (s *Server) Handler() http.Handler {
	return s.SetUpRouter()
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr(),
		Handler: s.Handler(),
	}

	logrus.Infof("start http server on %s", s.conf.Addr())
	err := s.httpServer.ListenAndServe()
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}
