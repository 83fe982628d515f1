package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/scenesplit/scenesplit-service/internal/detect"
	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
	"github.com/scenesplit/scenesplit-service/internal/domain/port"
	"github.com/scenesplit/scenesplit-service/internal/infra/metrics"
	"github.com/scenesplit/scenesplit-service/internal/split"
)

type ProcessVideoUseCase struct {
	repo      port.JobRepository
	storage   port.VideoStorage
	opener    port.FrameSourceOpener
	writer    port.ClipWriter
	archiver  port.ClipArchiver
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	tempDir   string
	maxRetry  int
	detection entity.DetectionConfig
}

type ProcessVideoConfig struct {
	TempDir    string
	MaxRetries int
	Detection  entity.DetectionConfig
}

func NewProcessVideoUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	opener port.FrameSourceOpener,
	writer port.ClipWriter,
	archiver port.ClipArchiver,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessVideoConfig,
) *ProcessVideoUseCase {
	return &ProcessVideoUseCase{
		repo:      repo,
		storage:   storage,
		opener:    opener,
		writer:    writer,
		archiver:  archiver,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
		detection: cfg.Detection,
	}
}

func (uc *ProcessVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.SplitRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.splitPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobProcessingDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

// detectionConfig merges per-message overrides onto the worker defaults.
func (uc *ProcessVideoUseCase) detectionConfig(msg entity.SplitRequestMessage) entity.DetectionConfig {
	cfg := uc.detection
	if msg.Threshold > 0 {
		cfg.Threshold = msg.Threshold
	}
	if msg.MinSceneLength > 0 {
		cfg.MinSceneLength = msg.MinSceneLength
	}
	return cfg
}

func (uc *ProcessVideoUseCase) splitPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.SplitRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download source video
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input"+filepath.Ext(msg.VideoKey))
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.JobProcessingDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Detect scene boundaries
	detStart := time.Now()
	ctx3, spanDet := tracer.Start(ctx, "detect_scenes")
	cfg := uc.detectionConfig(msg)
	intervals, meta, err := uc.detectScenes(ctx3, videoPath, cfg, log)
	spanDet.End()
	if err != nil {
		log.Error("scene detection failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "detect_scenes: "+err.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("detect").Observe(time.Since(detStart).Seconds())
	metrics.ScenesDetectedTotal.Add(float64(len(intervals)))
	metrics.FramesScannedTotal.Add(float64(meta.TotalFrames))

	// Split into clips
	splStart := time.Now()
	ctx4, spanSpl := tracer.Start(ctx, "split_scenes")
	clipsDir := filepath.Join(workDir, "clips")
	splitter := split.NewSplitter(uc.writer, log)
	result, err := splitter.SplitScenes(ctx4, videoPath, clipsDir, intervals)
	spanSpl.End()
	if err != nil {
		log.Error("scene splitting failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "split_scenes: "+err.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("split").Observe(time.Since(splStart).Seconds())
	metrics.ClipsCreatedTotal.Add(float64(len(result.CreatedClips)))
	metrics.ClipFailuresTotal.Add(float64(result.Failed))

	// Build and upload the run report
	report := entity.NewSceneReport(msg.VideoKey, intervals, cfg)
	report.CreatedClips = len(result.CreatedClips)
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	videoName := strings.TrimSuffix(filepath.Base(msg.VideoKey), filepath.Ext(msg.VideoKey))
	reportKey := fmt.Sprintf("%s/%s_scene_info.json", msg.UserID, videoName)
	if err := uc.storage.UploadReport(ctx, reportKey, reportJSON); err != nil {
		log.Error("report upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_report: "+err.Error(), log)
	}

	// Archive and upload clips
	upStart := time.Now()
	ctx5, spanUp := tracer.Start(ctx, "upload_clips")
	archivePath := filepath.Join(workDir, "clips.zip")
	if err := uc.archiver.ArchiveClips(ctx5, result.CreatedClips, archivePath); err != nil {
		spanUp.End()
		log.Error("clip archiving failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "archive_clips: "+err.Error(), log)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_archive: "+err.Error(), log)
	}
	archiveStat, _ := archiveFile.Stat()
	archiveKey := fmt.Sprintf("%s/clips_%s.zip", msg.UserID, job.ID.String())
	if err := uc.storage.UploadClipArchive(ctx5, archiveKey, archiveFile, archiveStat.Size()); err != nil {
		archiveFile.Close()
		spanUp.End()
		log.Error("clip archive upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_clips: "+err.Error(), log)
	}
	archiveFile.Close()
	spanUp.End()
	metrics.JobProcessingDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	// Mark completed
	job.MarkCompleted(reportKey, report.TotalScenes, report.CreatedClips, intervals[len(intervals)-1].End)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("scenes_detected", report.TotalScenes),
		zap.Int("clips_created", report.CreatedClips),
		zap.Int("clips_skipped", result.Skipped),
		zap.Int("clips_failed", result.Failed),
		zap.String("report_key", reportKey),
	)

	return nil
}

func (uc *ProcessVideoUseCase) detectScenes(
	ctx context.Context,
	videoPath string,
	cfg entity.DetectionConfig,
	log *zap.Logger,
) ([]entity.SceneInterval, port.VideoMetadata, error) {
	src, err := uc.opener.Open(ctx, videoPath)
	if err != nil {
		return nil, port.VideoMetadata{}, err
	}
	defer src.Close()

	detector := detect.NewDetector(cfg, log)
	progress := port.ProgressFunc(func(pct float64) {
		log.Debug("detection progress", zap.Float64("percent", pct))
	})

	intervals, err := detector.DetectScenes(ctx, src, progress)
	if err != nil {
		return nil, port.VideoMetadata{}, err
	}
	return intervals, src.Metadata(), nil
}

func (uc *ProcessVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.SplitRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.SplitRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *ProcessVideoUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.SplitStatusMessage{
		JobID:        job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		VideoKey:     job.VideoKey,
		ReportKey:    job.ReportKey,
		SceneCount:   job.SceneCount,
		ClipCount:    job.ClipCount,
		Duration:     job.VideoDuration,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
