package notification

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/arvernus/irock-sync/pkg/httputil"
)

// WebhookPayload represents the notification payload sent to webhook
type WebhookPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SyncNotificationInfo contains run details for notification
type SyncNotificationInfo struct {
	RunUUID         string
	ReleasesSeen    int
	ReleasesApplied int
	CommitHash      string
	Changed         bool
}

// SendWebhook sends a notification to the configured webhook URL
func SendWebhook(webhookURL, title, message string) error {
	if webhookURL == "" {
		log.Println("Notification webhook URL not configured, skipping notification")
		return nil
	}

	client := &http.Client{Timeout: 10 * time.Second}
	payload := WebhookPayload{Title: title, Message: message}

	err := httputil.PostJSONWithRetry(nil, client, webhookURL, payload, 3, 2*time.Second,
		func(attempt, maxAttempts int, err error) {
			log.Printf("Notification attempt %d/%d failed: %v", attempt, maxAttempts, err)
		})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	log.Printf("Notification sent successfully: %s", title)
	return nil
}

// SendSyncNotification sends a sync run completion notification
func SendSyncNotification(webhookURL, status string, info SyncNotificationInfo) {
	title := fmt.Sprintf("iRock Sync %s", status)

	var emoji string
	switch status {
	case "SUCCESS":
		emoji = "✅"
	case "FAILURE":
		emoji = "❌"
	}

	var outcome string
	switch {
	case info.Changed:
		outcome = fmt.Sprintf("committed %s", shortHash(info.CommitHash))
	case status == "SUCCESS":
		outcome = "no changes"
	default:
		outcome = "aborted"
	}

	message := fmt.Sprintf("🔄 run %s: %d/%d releases applied, %s %s",
		info.RunUUID,
		info.ReleasesApplied,
		info.ReleasesSeen,
		outcome,
		emoji,
	)

	// Always log the notification message for inspection
	log.Printf("Notification: %s - %s", title, message)

	if err := SendWebhook(webhookURL, title, message); err != nil {
		log.Printf("Failed to send sync notification: %v", err)
	}
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
