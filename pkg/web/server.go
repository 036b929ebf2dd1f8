// Package web provides the operator dashboard for beamview: a REST
// control surface over the stream lifecycle plus websocket streams for
// the live preview and measurements.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"gocv.io/x/gocv"

	"github.com/photonbench/go-beamview/internal/log"
	"github.com/photonbench/go-beamview/pkg/hub"
	"github.com/photonbench/go-beamview/pkg/pipeline"
)

// MeasurementUpdate is the JSON payload pushed per processed frame.
type MeasurementUpdate struct {
	Found       bool    `json:"found"`
	DisplayX    int     `json:"display_x"`
	DisplayY    int     `json:"display_y"`
	NativeX     int     `json:"native_x"`
	NativeY     int     `json:"native_y"`
	Diameter    float64 `json:"diameter_px"`
	Circularity float64 `json:"circularity"`
	Seq         uint64  `json:"seq"`
}

// Server is the dashboard server. It doubles as the pipeline's display
// sink: processed overlays are JPEG-encoded and fanned out to preview
// clients.
type Server struct {
	app  *fiber.App
	port string

	session *pipeline.Session
	saveDir string
	quality int

	previewHub *hub.Hub
	measureHub *hub.Hub
}

// NewServer wires the dashboard. quality is the preview JPEG quality
// (1-100); saveDir receives snapshots. The session is attached with
// SetSession once constructed — the server is also the session's
// display sink, so the two are built in that order.
func NewServer(port string, saveDir string, quality int) *Server {
	s := &Server{
		port:       port,
		saveDir:    saveDir,
		quality:    quality,
		previewHub: hub.New("preview"),
		measureHub: hub.New("measurements"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "beamview",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static dashboard assets
	app.Static("/", "./web")

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/connect", s.handleConnect)
	api.Post("/start", s.handleStart)
	api.Post("/stop", s.handleStop)
	api.Post("/close", s.handleClose)
	api.Post("/save", s.handleSave)
	api.Post("/exposure", s.handleExposure)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))
	app.Get("/ws/measurements", websocket.New(s.handleMeasureWS))

	s.app = app
	return s
}

// SetSession attaches the lifecycle session the handlers drive. Must
// be called before Start.
func (s *Server) SetSession(session *pipeline.Session) {
	s.session = session
}

// Start runs the hubs and serves. Blocks.
func (s *Server) Start() error {
	go s.previewHub.Run()
	go s.measureHub.Run()
	log.Info("dashboard listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync serves in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server stopped", "err", err)
		}
	}()
}

// Shutdown stops the fiber app.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Present implements pipeline.DisplaySink. It never blocks on clients:
// the hubs drop messages rather than stall the processing loop.
func (s *Server) Present(r pipeline.Result) {
	defer r.Overlay.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, r.Overlay,
		[]int{gocv.IMWriteJpegQuality, s.quality})
	if err != nil {
		log.Warn("preview encode failed", "seq", r.Seq, "err", err)
		return
	}
	// The native buffer dies with Close; the hub needs its own copy.
	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())
	buf.Close()

	s.previewHub.BroadcastBinary(jpeg)
	s.measureHub.BroadcastJSON(MeasurementUpdate{
		Found:       r.Found,
		DisplayX:    r.Display.X,
		DisplayY:    r.Display.Y,
		NativeX:     r.Native.X,
		NativeY:     r.Native.Y,
		Diameter:    r.Diameter,
		Circularity: r.Circularity,
		Seq:         r.Seq,
	})
}

// handlePreviewWS streams JPEG frames to one client.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	hub.NewClient(s.previewHub, c).Run()
}

// handleMeasureWS streams measurement JSON to one client.
func (s *Server) handleMeasureWS(c *websocket.Conn) {
	hub.NewClient(s.measureHub, c).Run()
}
