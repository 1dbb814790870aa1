// Package trace records rendered frames into an MJPEG video.
package trace

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// Recorder appends frames to an AVI file.
type Recorder struct {
	writer mjpeg.AviWriter
	buf    bytes.Buffer
	opts   jpeg.Options
	width  int
	height int
	frames int
}

// NewRecorder creates the video file at path. Every frame must be
// width x height pixels.
func NewRecorder(path string, width, height, fps int) (*Recorder, error) {
	w, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("create video %s: %w", path, err)
	}
	return &Recorder{
		writer: w,
		opts:   jpeg.Options{Quality: 90},
		width:  width,
		height: height,
	}, nil
}

// AddFrame encodes img as JPEG and appends it.
func (r *Recorder) AddFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != r.width || b.Dy() != r.height {
		return fmt.Errorf("frame %d is %dx%d, video is %dx%d", r.frames, b.Dx(), b.Dy(), r.width, r.height)
	}
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, img, &r.opts); err != nil {
		return fmt.Errorf("encode frame %d: %w", r.frames, err)
	}
	if err := r.writer.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("add frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns how many frames were written.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close finalizes the AVI index.
func (r *Recorder) Close() error {
	if err := r.writer.Close(); err != nil {
		return fmt.Errorf("close video: %w", err)
	}
	return nil
}
