package models

import (
	"time"

	"github.com/google/uuid"
)

type Table struct {
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"`
	Data     []Record `json:"data"`
}

type UploadResult struct {
	Message  string `json:"message"`
	RowCount int    `json:"rowCount"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

type UploadEvent struct {
	Revision   uuid.UUID `json:"revision"`
	Filename   string    `json:"filename"`
	Size       int       `json:"size"`
	RowCount   int       `json:"row_count"`
	UploadedAt time.Time `json:"uploaded_at"`

	Status NotificationStatus `json:"status"`
}
