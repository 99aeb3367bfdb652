package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/climatrix/climatrix/internal/config"
	"github.com/climatrix/climatrix/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed    = 16711680 // #FF0000
	ColorOrange = 16753920 // #FFA500
	ColorYellow = 16776960 // #FFFF00
	ColorGreen  = 65280    // #00FF00

	Username   = "Climatrix Alerts"
	timeLayout = "2006-01-02 15:04:05 UTC"
)

// Notifier posts alert changes to the configured Discord and Slack webhooks.
// Unset URLs are skipped.
type Notifier struct {
	discordURL string
	slackURL   string
	client     *http.Client
}

func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		discordURL: cfg.DiscordWebhookURL,
		slackURL:   cfg.SlackWebhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && (n.discordURL != "" || n.slackURL != "")
}

func (n *Notifier) AlertRaised(ctx context.Context, alert models.EnvironmentalAlert) error {
	if !n.Enabled() {
		return nil
	}

	var errs []error
	if n.discordURL != "" {
		if err := n.post(ctx, n.discordURL, discordAlertRaised(alert)); err != nil {
			errs = append(errs, fmt.Errorf("discord: %w", err))
		}
	}
	if n.slackURL != "" {
		if err := n.post(ctx, n.slackURL, slackAlertRaised(alert)); err != nil {
			errs = append(errs, fmt.Errorf("slack: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) AlertCleared(ctx context.Context, alert models.EnvironmentalAlert) error {
	if !n.Enabled() {
		return nil
	}

	var errs []error
	if n.discordURL != "" {
		if err := n.post(ctx, n.discordURL, discordAlertCleared(alert)); err != nil {
			errs = append(errs, fmt.Errorf("discord: %w", err))
		}
	}
	if n.slackURL != "" {
		if err := n.post(ctx, n.slackURL, slackAlertCleared(alert)); err != nil {
			errs = append(errs, fmt.Errorf("slack: %w", err))
		}
	}
	return errors.Join(errs...)
}

func severityColor(severity string) int {
	switch severity {
	case "EXTREME", "VERY_HIGH":
		return ColorRed
	case "HIGH":
		return ColorOrange
	default:
		return ColorYellow
	}
}

func place(alert models.EnvironmentalAlert) string {
	if alert.City != "" && alert.City != alert.Location {
		return alert.Location + " (" + alert.City + ")"
	}
	return alert.Location
}

func endTime(alert models.EnvironmentalAlert) string {
	if alert.EndTime == nil {
		return "Open"
	}
	return alert.EndTime.UTC().Format(timeLayout)
}

func discordAlertRaised(alert models.EnvironmentalAlert) DiscordWebhookRequest {
	description := alert.Description
	if description == "" {
		description = fmt.Sprintf("A %s alert is now active for **%s**.", alert.Type, place(alert))
	}

	return DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 **" + alert.Title + "**",
				Description: description,
				Color:       severityColor(alert.Severity),
				Fields: []DiscordWebhookField{
					{Name: "📍 Location", Value: place(alert), Inline: true},
					{Name: "🏷️ Type", Value: alert.Type, Inline: true},
					{Name: "⚠️ Severity", Value: "**" + alert.Severity + "**", Inline: true},
					{Name: "⏰ Starts", Value: alert.StartTime.UTC().Format(timeLayout), Inline: true},
					{Name: "🏁 Ends", Value: endTime(alert), Inline: true},
				},
				Footer:    &DiscordFooter{Text: "Climatrix environmental alerts"},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}
}

func discordAlertCleared(alert models.EnvironmentalAlert) DiscordWebhookRequest {
	return DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ **ALERT CLEARED**",
				Description: fmt.Sprintf("**%s** is no longer active.", alert.Title),
				Color:       ColorGreen,
				Fields: []DiscordWebhookField{
					{Name: "📍 Location", Value: place(alert), Inline: true},
					{Name: "🏷️ Type", Value: alert.Type, Inline: true},
					{Name: "⏰ Started", Value: alert.StartTime.UTC().Format(timeLayout), Inline: true},
				},
				Footer:    &DiscordFooter{Text: "Climatrix environmental alerts"},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}
}

func slackAlertRaised(alert models.EnvironmentalAlert) SlackWebhookRequest {
	color := "warning"
	if severityColor(alert.Severity) == ColorRed {
		color = "danger"
	}

	return SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":rotating_light:",
		Text:      ":rotating_light: *" + alert.Title + "*",
		Attachments: []SlackAttachment{
			{
				Color: color,
				Title: fmt.Sprintf("%s alert for %s", alert.Type, place(alert)),
				Text:  alert.Description,
				Fields: []SlackField{
					{Title: "Severity", Value: alert.Severity, Short: true},
					{Title: "Type", Value: alert.Type, Short: true},
					{Title: "Starts", Value: alert.StartTime.UTC().Format(timeLayout), Short: true},
					{Title: "Ends", Value: endTime(alert), Short: true},
				},
				Footer:    "Climatrix environmental alerts",
				Timestamp: time.Now().Unix(),
			},
		},
	}
}

func slackAlertCleared(alert models.EnvironmentalAlert) SlackWebhookRequest {
	return SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":white_check_mark:",
		Text:      ":white_check_mark: *ALERT CLEARED*",
		Attachments: []SlackAttachment{
			{
				Color: "good",
				Title: alert.Title,
				Text:  fmt.Sprintf("The %s alert for %s is no longer active.", alert.Type, place(alert)),
				Fields: []SlackField{
					{Title: "Severity", Value: alert.Severity, Short: true},
					{Title: "Started", Value: alert.StartTime.UTC().Format(timeLayout), Short: true},
				},
				Footer:    "Climatrix environmental alerts",
				Timestamp: time.Now().Unix(),
			},
		},
	}
}

func (n *Notifier) post(ctx context.Context, webhookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
