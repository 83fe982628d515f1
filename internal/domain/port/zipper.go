package port

import "context"

// ClipArchiver bundles the produced clip files into a single archive for
// upload.
type ClipArchiver interface {
	ArchiveClips(ctx context.Context, clipPaths []string, outputPath string) error
}
