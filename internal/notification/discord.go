package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/earth-window/earth-window-dataset-poc/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

func sendDiscordNotification(url string, message DiscordMessage) error {
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}

	return nil
}

func SendDiscordErrorNotification(errorMessage string) error {
	return sendDiscordNotification(properties.DiscordErrorNotificationUrl(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 Error Notification",
				Description: fmt.Sprintf("An error occurred: %s", errorMessage),
				Color:       16711680, // Red color
			},
		},
	})
}

func SendDiscordWarnNotification(warnMessage string) error {
	return sendDiscordNotification(properties.DiscordWarnNotificationUrl(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "⚠️ Warning Notification",
				Description: warnMessage,
				Color:       16776960, // Yellow color
			},
		},
	})
}

func SendDiscordSuccessNotification(successMessage string) error {
	return sendDiscordNotification(properties.DiscordSuccessNotificationUrl(), DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ Success Notification",
				Description: successMessage,
				Color:       65280, // Green color
			},
		},
	})
}
