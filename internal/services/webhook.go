package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

// Webhook payloads follow the Discord/Slack incoming-webhook shapes;
// the URL decides which format to send.

type DiscordWebhookRequest struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type SlackWebhookRequest struct {
	Text string `json:"text"`
}

const (
	colorOverdue  = 0xE74C3C
	colorActivity = 0x3498DB
)

// BuildOverduePayload formats an overdue-task alert.
func BuildOverduePayload(task models.Task, projectName string) DiscordWebhookRequest {
	due := ""
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02")
	}

	return DiscordWebhookRequest{
		Embeds: []DiscordEmbed{{
			Title:       fmt.Sprintf("Task overdue: %s", task.Title),
			Description: fmt.Sprintf("Project %s has a task past its due date.", projectName),
			Color:       colorOverdue,
			Fields: []DiscordEmbedField{
				{Name: "Due", Value: due, Inline: true},
				{Name: "Status", Value: task.Status, Inline: true},
				{Name: "Priority", Value: fmt.Sprintf("%d", task.Priority), Inline: true},
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
}

// BuildActivityPayload formats an activity notification.
func BuildActivityPayload(event, projectName string) DiscordWebhookRequest {
	return DiscordWebhookRequest{
		Embeds: []DiscordEmbed{{
			Title:       fmt.Sprintf("Activity in %s", projectName),
			Description: event,
			Color:       colorActivity,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}
}

// ToSlack converts an embed payload to Slack's flat text shape.
func (p DiscordWebhookRequest) ToSlack() SlackWebhookRequest {
	var parts []string
	for _, embed := range p.Embeds {
		parts = append(parts, fmt.Sprintf("*%s* %s", embed.Title, embed.Description))
	}
	if p.Content != "" {
		parts = append(parts, p.Content)
	}
	return SlackWebhookRequest{Text: strings.Join(parts, "\n")}
}

// IsSlackURL picks the payload shape from the webhook host.
func IsSlackURL(webhookURL string) bool {
	return strings.Contains(webhookURL, "hooks.slack.com")
}

// SendWebhook delivers the payload to the project's configured URL,
// choosing the Slack or Discord shape from the host.
func SendWebhook(webhookURL string, payload DiscordWebhookRequest) error {
	if webhookURL == "" {
		return nil
	}

	var body []byte
	var err error

	if IsSlackURL(webhookURL) {
		body, err = json.Marshal(payload.ToSlack())
	} else {
		body, err = json.Marshal(payload)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
