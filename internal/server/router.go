package server

import (
	"embed"
	"html/template"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "signsight/docs"
)

//go:embed templates/*.html
var templatesFS embed.FS

const uploadsURLPrefix = "/static/uploads"

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	if s.conf.Pprof {
		pprof.Register(router)
	}

	router.Static(uploadsURLPrefix, s.conf.UploadDir)

	router.GET("/", s.handleIndex)
	upload := router.Group("/upload")
	upload.Use(LimitBodySize(s.conf.MaxUploadSize))
	upload.GET("", s.handleUpload)
	upload.POST("", s.handleUpload)

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.GET("/videos", s.handleListVideos)
	apiV1.GET("/videos/:name", s.handleGetVideo)
}
