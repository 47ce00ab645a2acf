// Package remoteview serves a small HTTP API with the live display image,
// scanner status and the scan journal, for debugging a headless unit over
// the network.
package remoteview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/config"
	"github.com/optiscan/optiscan/pkg/journal"
	"github.com/optiscan/optiscan/pkg/metrics"
	"github.com/optiscan/optiscan/pkg/system"
)

// Status is the scanner state exposed on /api/status.
type Status struct {
	Version   string `json:"version"`
	State     string `json:"state"`
	Connected bool   `json:"usbConnected"`
	TargetW   int    `json:"targetWidth"`
	TargetH   int    `json:"targetHeight"`
}

// StatusProvider hands the server the live scanner state and the most
// recently composed display frame.
type StatusProvider interface {
	Status() Status
	// Snapshot may return nil before the first frame is composed.
	Snapshot() *image.RGBA
}

// streamInterval paces the MJPEG stream.
const streamInterval = 100 * time.Millisecond

type Server struct {
	gin     *gin.Engine
	cfg     config.RemoteView
	source  StatusProvider
	journal *journal.Journal
	log     *zap.SugaredLogger
}

// NewServer wires the routes. With an empty token the API is open, which is
// logged loudly since the stream exposes whatever the camera sees.
func NewServer(cfg config.RemoteView, source StatusProvider, jr *journal.Journal,
	log *zap.Logger, debug bool,
) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
	)

	if debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins: []string{"http://localhost:5173"},
				AllowMethods: []string{"GET", "OPTIONS"},
				AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
				MaxAge:       12 * time.Hour,
			}),
		)
	}

	s := &Server{
		gin:     engine,
		cfg:     cfg,
		source:  source,
		journal: jr,
		log:     log.Sugar(),
	}

	if cfg.Token == "" {
		s.log.Warnw("Remote view runs without authentication, the camera stream is open to the network",
			"bind", cfg.Bind, "port", cfg.Port)
	}

	engine.GET("/healthz", s.healthz)

	authed := engine.Group("/", s.requireToken)
	authed.GET("/api/status", s.getStatus)
	authed.GET("/api/scans", s.getScans)
	authed.GET("/view/snapshot.png", s.getSnapshot)
	authed.GET("/view/stream.mjpeg", s.getStream)
	authed.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.gin }

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Bind, s.cfg.Port),
		Handler:           s.gin,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("Remote view listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requireToken(c *gin.Context) {
	if s.cfg.Token == "" {
		return
	}
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token != s.cfg.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": system.VersionString()})
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Status())
}

func (s *Server) getScans(c *gin.Context) {
	entries := s.journal.Recent()
	if entries == nil {
		entries = []journal.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"scans": entries})
}

func (s *Server) getSnapshot(c *gin.Context) {
	frame := s.source.Snapshot()
	if frame == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame composed yet"})
		return
	}
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := png.Encode(c.Writer, frame); err != nil {
		s.log.Debugw("Snapshot encode aborted", "error", err)
	}
}

func (s *Server) getStream(c *gin.Context) {
	const boundary = "optiscanframe"
	c.Header("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	c.Status(http.StatusOK)

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
		frame := s.source.Snapshot()
		if frame == nil {
			continue
		}
		fmt.Fprintf(c.Writer, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", boundary)
		if err := jpeg.Encode(c.Writer, frame, &jpeg.Options{Quality: 80}); err != nil {
			return
		}
		fmt.Fprint(c.Writer, "\r\n")
		c.Writer.Flush()
	}
}
