package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphEvent_StreamValues(t *testing.T) {
	event := NewPostCreatedEvent(7, 3)

	values, err := event.ToMap()
	require.NoError(t, err)
	assert.Equal(t, EventPostCreated, values["type"])

	parsed, err := ParseGraphEvent(values)
	require.NoError(t, err)
	assert.Equal(t, event, parsed)
}

func TestParseGraphEvent_Rejects(t *testing.T) {
	_, err := ParseGraphEvent(map[string]interface{}{"type": EventPostCreated})
	assert.Error(t, err)

	_, err = ParseGraphEvent(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)
}

func TestNewUserDeletedEvent_OmitsUnsetFields(t *testing.T) {
	values, err := NewUserDeletedEvent(5).ToMap()
	require.NoError(t, err)

	data := values["data"].(string)
	assert.Contains(t, data, `"user_id":5`)
	assert.NotContains(t, data, "post_id")
	assert.NotContains(t, data, "follower_id")
}
