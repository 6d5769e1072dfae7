package notifications

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailNotification(t *testing.T) {
	n := NewEmailNotification(NotificationTypePasswordReset,
		"jdoe@example.com", "jdoe", "Password recovery for user jdoe",
		map[string]interface{}{"token": "abc", "valid_hours": 48})

	assert.NotEqual(t, "", n.ID.String())
	assert.Equal(t, NotificationStatusPending, n.Status)
	assert.Equal(t, 3, n.MaxRetries)
	assert.Equal(t, 0, n.RetryCount)
	assert.Equal(t, "jdoe@example.com", n.GetPartitionKey())
}

func TestNewEmailNotificationNilData(t *testing.T) {
	n := NewEmailNotification(NotificationTypeNewAccount, "jdoe@example.com", "jdoe", "Welcome", nil)
	require.NotNil(t, n.TemplateData)
}

func TestEmailNotificationRoundTrip(t *testing.T) {
	n := NewEmailNotification(NotificationTypeNewAccount,
		"jdoe@example.com", "jdoe", "Welcome to instaclone",
		map[string]interface{}{"username": "jdoe"})

	data, err := n.ToJSON()
	require.NoError(t, err)

	var decoded EmailNotification
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, n.ID, decoded.ID)
	assert.Equal(t, n.Type, decoded.Type)
	assert.Equal(t, n.Subject, decoded.Subject)
}

func TestMarkSentAndFailed(t *testing.T) {
	n := NewEmailNotification(NotificationTypeNewAccount, "jdoe@example.com", "jdoe", "Welcome", nil)

	n.MarkSent()
	assert.Equal(t, NotificationStatusSent, n.Status)
	require.NotNil(t, n.SentAt)

	n.MarkFailed(errors.New("smtp unreachable"))
	assert.Equal(t, NotificationStatusFailed, n.Status)
	require.NotNil(t, n.LastError)
	assert.Equal(t, "smtp unreachable", *n.LastError)
}
