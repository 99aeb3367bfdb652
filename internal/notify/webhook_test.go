package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/climatrix/climatrix/internal/config"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert() models.EnvironmentalAlert {
	return models.EnvironmentalAlert{
		Type:      "HEAT_WAVE",
		Severity:  "EXTREME",
		Title:     "Severe heat in Delhi",
		Location:  "New Delhi",
		City:      "New Delhi",
		IsActive:  true,
		StartTime: time.Date(2025, 5, 20, 6, 0, 0, 0, time.UTC),
	}
}

func TestAlertRaisedPostsToBothWebhooks(t *testing.T) {
	var discord DiscordWebhookRequest
	var slack SlackWebhookRequest

	discordServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &discord))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer discordServer.Close()

	slackServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &slack))
	}))
	defer slackServer.Close()

	n := New(config.NotifyConfig{DiscordWebhookURL: discordServer.URL, SlackWebhookURL: slackServer.URL})
	require.NoError(t, n.AlertRaised(context.Background(), testAlert()))

	require.Len(t, discord.Embeds, 1)
	assert.Equal(t, ColorRed, discord.Embeds[0].Color)
	assert.Contains(t, discord.Embeds[0].Title, "Severe heat in Delhi")

	require.Len(t, slack.Attachments, 1)
	assert.Equal(t, "danger", slack.Attachments[0].Color)
}

func TestAlertClearedReportsWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := New(config.NotifyConfig{SlackWebhookURL: server.URL})
	err := n.AlertCleared(context.Background(), testAlert())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack")
	assert.Contains(t, err.Error(), "502")
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	n := New(config.NotifyConfig{})
	assert.False(t, n.Enabled())
	assert.NoError(t, n.AlertRaised(context.Background(), testAlert()))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.AlertCleared(context.Background(), testAlert()))
}
