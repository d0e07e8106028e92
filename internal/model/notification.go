package model

import "time"

const (
	NotifyInfo    = "info"
	NotifySuccess = "success"
	NotifyWarning = "warning"
	NotifyError   = "error"
)

// Notification is an ephemeral UI alert. Every notification eventually
// leaves the active list: by manual dismissal, by its auto-dismiss timer,
// or by the expiry sweep.
type Notification struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Read        bool   `json:"read"`
	Dismissible bool   `json:"dismissible"`
	// AutoDismissMs schedules removal that many milliseconds after Show.
	// Zero means no per-item timer.
	AutoDismissMs int        `json:"auto_dismiss_ms,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
