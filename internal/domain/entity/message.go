package entity

import "github.com/google/uuid"

// SplitRequestMessage is the inbound message from the video.split queue.
type SplitRequestMessage struct {
	JobID          uuid.UUID `json:"job_id"`
	UserID         string    `json:"user_id"`
	VideoKey       string    `json:"video_key"`
	FileSize       int64     `json:"file_size"`
	UserEmail      string    `json:"user_email"`
	Threshold      float64   `json:"threshold,omitempty"`
	MinSceneLength float64   `json:"min_scene_length,omitempty"`
}

// SplitStatusMessage is the outbound message published to the video.status queue.
type SplitStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	UserID       string    `json:"user_id"`
	Status       JobStatus `json:"status"`
	VideoKey     string    `json:"video_key"`
	ReportKey    string    `json:"report_key,omitempty"`
	SceneCount   int       `json:"scene_count,omitempty"`
	ClipCount    int       `json:"clip_count,omitempty"`
	Duration     float64   `json:"duration_seconds,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}
