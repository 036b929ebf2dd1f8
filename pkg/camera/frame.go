package camera

import (
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// Frame is one captured image with its acquisition metadata.
//
// A Frame has exactly one owner at any time. Ownership moves with the
// frame through the pipeline (source → acquirer → queue → processor);
// whoever holds it last must Release it. The backing Mat is never
// shared across goroutines.
type Frame struct {
	ID        uuid.UUID
	Seq       uint64
	Width     int
	Height    int
	Complete  bool
	Timestamp time.Time

	mat      gocv.Mat
	released bool
}

// NewFrame wraps a Mat captured from a device. The Frame takes
// ownership of the Mat.
func NewFrame(mat gocv.Mat, seq uint64, complete bool) *Frame {
	return &Frame{
		ID:        uuid.New(),
		Seq:       seq,
		Width:     mat.Cols(),
		Height:    mat.Rows(),
		Complete:  complete,
		Timestamp: time.Now(),
		mat:       mat,
	}
}

// Mat returns the backing pixel buffer. The Frame retains ownership.
func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

// Release frees the backing Mat. Safe to call more than once.
func (f *Frame) Release() {
	if f.released {
		return
	}
	f.released = true
	f.mat.Close()
}
