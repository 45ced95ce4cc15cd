package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signsight/internal/dao"
)

var errHistoryDisabled = errors.New("video history is not enabled")

// handleListVideos lists processing records
// @Summary List processed videos
// @Description Processing records, newest first
// @Tags videos
// @Produce json
// @Param start query int false "offset" default(0)
// @Param limit query int false "page size" default(10)
// @Success 200 {object} dao.ListVideosResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/videos [get]
func (s *Server) handleListVideos(c *gin.Context) {
	if s.history == nil {
		s.writeError(c, http.StatusNotFound, errHistoryDisabled)
		return
	}

	req := &dao.ListVideosRequest{}
	if err := c.ShouldBindQuery(req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	items, total, err := s.history.ListVideos(req.Start, req.Limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, dao.ListVideosResponse{
		Items: items,
		Total: total,
	})
}

// handleGetVideo returns one processing record
// @Summary Get one processed video
// @Tags videos
// @Produce json
// @Param name path string true "processed filename"
// @Success 200 {object} dao.ProcessedVideo
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/videos/{name} [get]
func (s *Server) handleGetVideo(c *gin.Context) {
	if s.history == nil {
		s.writeError(c, http.StatusNotFound, errHistoryDisabled)
		return
	}

	video, err := s.history.GetVideo(c.Param("name"))
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if video == nil {
		s.writeError(c, http.StatusNotFound, errors.New("video not found"))
		return
	}

	c.JSON(http.StatusOK, video)
}
