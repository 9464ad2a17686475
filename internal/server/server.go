// Package server exposes the pipeline stages over HTTP. Every request
// names its inputs explicitly; the server keeps no per-job state
// between calls.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/internal/config"
	"github.com/emigr8/clipforge/internal/pipeline"
	"github.com/emigr8/clipforge/pkg/util"
)

// Server wraps the gin router around one pipeline.
type Server struct {
	logger   zerolog.Logger
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	router   *gin.Engine
}

// New creates a server and registers its routes.
func New(logger zerolog.Logger, cfg *config.Config, p *pipeline.Pipeline) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		logger:   logger.With().Str("component", "server").Logger(),
		cfg:      cfg,
		pipeline: p,
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	s.router.POST("/process-video", s.processVideo)
	s.router.POST("/add-subtitles", s.addSubtitles)
	s.router.POST("/apply-design", s.applyDesign)
	s.router.POST("/process-complete-pipeline", s.processComplete)
	s.router.GET("/list-files", s.listFiles)
	s.router.GET("/download-file/:name", s.downloadFile)
	s.router.POST("/cleanup", s.cleanup)
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.logger.Info().Str("addr", s.cfg.Server.Addr).Msg("serving")
	return s.router.Run(s.cfg.Server.Addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type processVideoRequest struct {
	URL string `json:"url" binding:"required"`
}

// processVideo downloads a source video and cuts its clips.
func (s *Server) processVideo(c *gin.Context) {
	var req processVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source, err := s.pipeline.FetchVideo(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cut, err := s.pipeline.CutClips(c.Request.Context(), source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source": source,
		"clips":  basenames(cut),
	})
}

// addSubtitles transcribes and burns captions for every cut clip.
func (s *Server) addSubtitles(c *gin.Context) {
	subtitled, err := s.pipeline.GenerateSubtitles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtitled": basenames(subtitled)})
}

type applyDesignRequest struct {
	ClipsDir     string  `json:"clips_dir"`
	OutDir       string  `json:"out_dir"`
	Overlay      string  `json:"overlay"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	SubtitleMode string  `json:"subtitle_mode"`
	SubtitleFile string  `json:"subtitle_file"`
	SubtitleDir  string  `json:"subtitle_dir"`
	SmartCrop    *bool   `json:"smart_crop"`
	Expansion    float64 `json:"expansion"`
}

// applyDesign composes every clip in the named directory onto the
// vertical canvas.
func (s *Server) applyDesign(c *gin.Context) {
	var req applyDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.pipeline.ComposeClips(c.Request.Context(), pipeline.ComposeRequest{
		ClipsDir:     req.ClipsDir,
		OutDir:       req.OutDir,
		OverlayImage: req.Overlay,
		CanvasWidth:  req.Width,
		CanvasHeight: req.Height,
		SubtitleMode: req.SubtitleMode,
		SubtitleFile: req.SubtitleFile,
		SubtitleDir:  req.SubtitleDir,
		SmartCrop:    req.SmartCrop,
		Expansion:    req.Expansion,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reportJSON(report))
}

// processComplete runs fetch, cut, subtitle, and compose for one URL.
func (s *Server) processComplete(c *gin.Context) {
	var req processVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.pipeline.Complete(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reportJSON(report))
}

// listFiles reports the contents of every working directory.
func (s *Server) listFiles(c *gin.Context) {
	out := gin.H{}
	for name, dir := range s.workDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			out[name] = []string{}
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		out[name] = names
	}
	c.JSON(http.StatusOK, out)
}

// downloadFile serves a rendered file by basename. Only files directly
// inside a working directory are reachable.
func (s *Server) downloadFile(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	for _, dir := range s.workDirs() {
		path := filepath.Join(dir, name)
		if util.FileExists(path) {
			c.FileAttachment(path, name)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "file not found: " + name})
}

// cleanup removes intermediates from every working directory.
func (s *Server) cleanup(c *gin.Context) {
	removed := 0
	for _, dir := range s.workDirs() {
		removed += util.CleanupGlob(filepath.Join(dir, "*.mp4"))
		removed += util.CleanupGlob(filepath.Join(dir, "*.srt"))
		removed += util.CleanupGlob(filepath.Join(dir, "input.*"))
	}
	s.logger.Info().Int("removed", removed).Msg("cleaned working directories")
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) workDirs() map[string]string {
	return map[string]string{
		"videos":    s.cfg.VideosDir,
		"clips":     s.cfg.ClipsDir,
		"subtitled": s.cfg.SubtitledDir,
		"designed":  s.cfg.DesignedDir,
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
