package server

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"signsight/internal/dao"
	"signsight/internal/metrics"
	"signsight/internal/utils"
	"signsight/pkg/log"
)

const (
	uploadFormField = "video"
	indexTemplate   = "index.html"
	errorTemplate   = "error.html"
)

type indexPage struct {
	VideoURL string
	Video    *dao.ProcessedVideo
	MaxSize  int64
	Accept   []string
}

func (s *Server) newIndexPage() indexPage {
	return indexPage{
		MaxSize: s.conf.MaxUploadSize,
		Accept:  s.conf.AllowedExtensions,
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, s.newIndexPage())
}

// handleUpload saves an uploaded video and annotates it
// @Summary Upload a video and annotate traffic signs
// @Description Saves the uploaded video, runs detection on every frame and renders the page with the processed video
// @Tags upload
// @Accept multipart/form-data
// @Produce html
// @Param video formData file true "video file (mp4, avi, mov)"
// @Success 200 {string} string "page embedding the processed video"
// @Failure 302 {string} string "invalid upload, redirected back to the form"
// @Failure 413 {string} string "upload too large"
// @Failure 500 {string} string "processing failed"
// @Router /upload [post]
func (s *Server) handleUpload(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.HTML(http.StatusOK, indexTemplate, s.newIndexPage())
		return
	}

	ctx := c.Request.Context()
	logger := log.GetLogger(ctx).WithField("component", "upload")

	fileHeader, err := c.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.UploadsTotal.WithLabelValues("too_large").Inc()
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		logger.WithError(err).Debug("no video in upload")
		s.redirectToForm(c)
		return
	}

	if fileHeader.Filename == "" || !s.conf.AllowedFile(fileHeader.Filename) {
		logger.Debugf("rejected upload %q", fileHeader.Filename)
		s.redirectToForm(c)
		return
	}

	filename := utils.SecureFilename(fileHeader.Filename)
	if filename == "" || !s.conf.AllowedFile(filename) {
		logger.Debugf("rejected upload %q after sanitizing", fileHeader.Filename)
		s.redirectToForm(c)
		return
	}

	if fileHeader.Size > s.conf.MaxUploadSize {
		metrics.UploadsTotal.WithLabelValues("too_large").Inc()
		c.AbortWithStatus(http.StatusRequestEntityTooLarge)
		return
	}

	uploadPath := filepath.Join(s.conf.UploadDir, filename)
	if err := c.SaveUploadedFile(fileHeader, uploadPath); err != nil {
		logger.WithError(err).Errorf("save upload %s failed", filename)
		s.internalError(c)
		return
	}
	logger.Infof("saved upload %s (%d bytes)", filename, fileHeader.Size)

	video, err := s.processor.Process(ctx, uploadPath)
	if err != nil {
		logger.WithError(err).Errorf("process upload %s failed", filename)
		s.internalError(c)
		return
	}
	video.Url = path.Join(uploadsURLPrefix, url.PathEscape(video.Name))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, filepath.Join(s.conf.UploadDir, video.Name), video); err != nil {
			logger.WithError(err).Warnf("publish %s failed", video.Name)
		}
	}
	if s.history != nil {
		if err := s.history.SaveVideo(video); err != nil {
			logger.WithError(err).Warnf("save history for %s failed", video.Name)
		}
	}

	metrics.UploadsTotal.WithLabelValues("processed").Inc()
	page := s.newIndexPage()
	page.VideoURL = video.Url
	page.Video = video
	c.HTML(http.StatusOK, indexTemplate, page)
}

func (s *Server) redirectToForm(c *gin.Context) {
	metrics.UploadsTotal.WithLabelValues("rejected").Inc()
	c.Redirect(http.StatusFound, c.Request.URL.Path)
}

func (s *Server) internalError(c *gin.Context) {
	metrics.UploadsTotal.WithLabelValues("failed").Inc()
	c.HTML(http.StatusInternalServerError, errorTemplate, nil)
}
