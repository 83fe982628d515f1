package ffmpeg

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ClipArchiver bundles clip files into one deflate-compressed zip.
type ClipArchiver struct{}

func NewClipArchiver() *ClipArchiver {
	return &ClipArchiver{}
}

func (a *ClipArchiver) ArchiveClips(ctx context.Context, clipPaths []string, outputPath string) error {
	archive, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer archive.Close()

	zw := zip.NewWriter(archive)
	defer zw.Close()

	for _, clip := range clipPaths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := addClipToArchive(zw, clip); err != nil {
			return fmt.Errorf("add %s to archive: %w", clip, err)
		}
	}

	return nil
}

func addClipToArchive(zw *zip.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
