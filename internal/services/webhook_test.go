package services

import (
	"strings"
	"testing"
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
)

func TestBuildOverduePayload(t *testing.T) {
	due := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		Title:    "Write spec",
		Status:   "open",
		Priority: 3,
		DueDate:  &due,
	}

	payload := BuildOverduePayload(task, "Launch")

	if len(payload.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(payload.Embeds))
	}
	embed := payload.Embeds[0]
	if !strings.Contains(embed.Title, "Write spec") {
		t.Errorf("title = %q", embed.Title)
	}
	if !strings.Contains(embed.Description, "Launch") {
		t.Errorf("description = %q", embed.Description)
	}

	var dueField string
	for _, field := range embed.Fields {
		if field.Name == "Due" {
			dueField = field.Value
		}
	}
	if dueField != "2026-08-28" {
		t.Errorf("due field = %q", dueField)
	}
}

func TestToSlackFlattensEmbeds(t *testing.T) {
	payload := BuildActivityPayload("task_created", "Launch")
	slack := payload.ToSlack()

	if !strings.Contains(slack.Text, "Launch") || !strings.Contains(slack.Text, "task_created") {
		t.Errorf("slack text = %q", slack.Text)
	}
}

func TestIsSlackURL(t *testing.T) {
	if !IsSlackURL("https://hooks.slack.com/services/T000/B000/XXXX") {
		t.Error("slack URL not detected")
	}
	if IsSlackURL("https://discord.com/api/webhooks/123/abc") {
		t.Error("discord URL misdetected as slack")
	}
}

func TestSendWebhookSkipsEmptyURL(t *testing.T) {
	if err := SendWebhook("", DiscordWebhookRequest{}); err != nil {
		t.Errorf("empty URL should be a no-op, got %v", err)
	}
}
