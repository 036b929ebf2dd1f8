// beamview - real-time beam centroid profiler
//
// Drives one camera, finds the beam centroid per frame, and serves a
// dashboard with the annotated preview and measurements.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/photonbench/go-beamview/internal/config"
	"github.com/photonbench/go-beamview/internal/log"
	"github.com/photonbench/go-beamview/pkg/camera"
	"github.com/photonbench/go-beamview/pkg/pipeline"
	"github.com/photonbench/go-beamview/pkg/web"
)

func main() {
	log.Init(config.LogLevel())

	fmt.Println("🔬 beamview - beam centroid profiler")
	fmt.Println("====================================")

	cfg := camera.DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		log.Error("invalid configuration", "errors", errs)
		os.Exit(1)
	}

	var src camera.Source
	switch config.Source() {
	case "webcam":
		src = camera.NewWebcam()
	case "sim":
		sim := camera.NewSimSource()
		sim.Interval = frameInterval(cfg.FrameRate)
		sim.IncompleteEvery = 10
		src = sim
	default:
		log.Error("unknown source", "source", config.Source())
		os.Exit(1)
	}
	fmt.Printf("Source: %s  Port: %s\n\n", config.Source(), config.Port())

	server := web.NewServer(config.Port(), config.SaveDir(), cfg.JPEGQuality)

	// Drop-oldest keeps the preview live when processing lags; saves
	// are unaffected since they snapshot the processed stream, not the
	// queue.
	session := pipeline.NewSession(src, cfg, server, pipeline.WithDropOldest())
	server.SetSession(session)

	server.StartAsync()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n👋 Shutting down")
	if session.State() == pipeline.StateStreaming {
		if err := session.Stop(); err != nil {
			log.Warn("stop on shutdown", "err", err)
		}
	}
	if st := session.State(); st == pipeline.StateConnected || st == pipeline.StateStopped {
		if err := session.Close(); err != nil {
			log.Warn("close on shutdown", "err", err)
		}
	}
	server.Shutdown()
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
