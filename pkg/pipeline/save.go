package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"
)

// SaveSink persists a snapshot frame. Implementations choose the
// encoding; the pipeline itself never encodes pixels.
type SaveSink interface {
	// Save writes img into dir and returns the path written.
	Save(img gocv.Mat, dir string, seq uint64) (string, error)
}

// ImageFileSink writes PNG snapshots named by timestamp and sequence.
type ImageFileSink struct{}

// Save implements SaveSink via gocv's image writer.
func (ImageFileSink) Save(img gocv.Mat, dir string, seq uint64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("beam_%s_%06d.png", time.Now().Format("20060102-150405"), seq)
	path := filepath.Join(dir, name)
	if ok := gocv.IMWrite(path, img); !ok {
		return "", fmt.Errorf("imwrite %s failed", path)
	}
	return path, nil
}
