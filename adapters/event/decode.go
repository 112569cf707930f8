package event

import (
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/devprofile/internal/application/service"
)

// Decode parses a message produced by KafkaProducerClient.Publish.
func Decode(msg kafka.Message) (service.Event, error) {
	var evt service.Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return evt, fmt.Errorf("invalid event payload: %w", err)
	}
	if evt.Type == "" {
		for _, h := range msg.Headers {
			if h.Key == "type" {
				evt.Type = string(h.Value)
			}
		}
	}
	return evt, nil
}
