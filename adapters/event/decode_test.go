package event

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/devprofile/internal/application/service"
)

func TestDecode(t *testing.T) {
	body, err := json.Marshal(service.Event{
		Type:      service.EventEndorsementAdded,
		ProfileID: "8f1d2c3e-0000-4000-8000-000000000001",
		Payload:   map[string]any{"skill_id": "s1"},
	})
	require.NoError(t, err)

	evt, err := Decode(kafka.Message{Value: body})
	require.NoError(t, err)
	assert.Equal(t, service.EventEndorsementAdded, evt.Type)
	assert.Equal(t, "8f1d2c3e-0000-4000-8000-000000000001", evt.ProfileID)
	assert.Equal(t, "s1", evt.Payload["skill_id"])
}

func TestDecode_TypeFromHeader(t *testing.T) {
	evt, err := Decode(kafka.Message{
		Value:   []byte(`{"profile_id":"p1"}`),
		Headers: []kafka.Header{{Key: "type", Value: []byte(service.EventThemeChanged)}},
	})
	require.NoError(t, err)
	assert.Equal(t, service.EventThemeChanged, evt.Type)
}

func TestDecode_InvalidPayload(t *testing.T) {
	_, err := Decode(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
