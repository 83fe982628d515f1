package port

import "context"

// ClipWriter encodes a sub-range of a source video into a standalone clip
// file. A failure affects only that clip; callers continue with the rest of
// the batch.
type ClipWriter interface {
	ExtractClip(ctx context.Context, sourcePath string, start, end float64, outputPath string) error
}
