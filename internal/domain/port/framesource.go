package port

import "context"

// VideoMetadata describes the stream a FrameSource yields.
type VideoMetadata struct {
	FPS         float64
	TotalFrames int
	Width       int
	Height      int
}

// Duration returns total stream length in seconds, 0 when metadata is degenerate.
func (m VideoMetadata) Duration() float64 {
	if m.FPS <= 0 {
		return 0
	}
	return float64(m.TotalFrames) / m.FPS
}

// Frame is one decoded video frame. Pix holds samples row by row; Channels is
// 1 for grayscale and 3 for interleaved RGB. A frame handed out by Next is
// owned by the caller and never reused by the source.
type Frame struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// FrameSource yields decoded frames strictly in presentation order.
// Next returns io.EOF once the stream is exhausted.
type FrameSource interface {
	Metadata() VideoMetadata
	Next(ctx context.Context) (*Frame, error)
	Close() error
}

// FrameSourceOpener opens a FrameSource for a video file on disk.
type FrameSourceOpener interface {
	Open(ctx context.Context, videoPath string) (FrameSource, error)
}
