package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/nutriquest/pkg/mailer"
)

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := mailer.NotificationJob{To: "jane@example.com"}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "jane@example.com", job.Data["Email"])
	assert.Equal(t, "jane@example.com", job.Data["RecipientEmail"])

	job = mailer.NotificationJob{To: "jane@example.com", Data: map[string]any{"Email": "other@example.com"}}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "other@example.com", job.Data["Email"])
	assert.Equal(t, "jane@example.com", job.Data["RecipientEmail"])
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bucket/avatars/a.png", PublicURL("bucket", "avatars/a.png"))
}

func TestLogHelpersTolerateNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "x", nil, nil)
		LogInfo(nil, "x", nil)
	})
	l := NewLogger("nutriquest", "test")
	assert.NotPanics(t, func() { LogError(l, "x", assert.AnError, nil) })
}
