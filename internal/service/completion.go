package service

import (
	"context"
	"time"

	"trading-chat-be/internal/pkg/logger"
	"trading-chat-be/pkg/events"
	"trading-chat-be/pkg/llm"
	"trading-chat-be/pkg/store"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("trading-chat-be/internal/service")

func toLLMHistory(messages []store.Message) []llm.Message {
	history := make([]llm.Message, len(messages))
	for i, m := range messages {
		history[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return history
}

// complete runs one completion over the whole transcript. timeout <= 0 means
// the call is bounded only by ctx.
func complete(
	ctx context.Context,
	provider llm.LLMProvider,
	timeout time.Duration,
	transcript []store.Message,
	opts ...llm.Option,
) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return provider.Chat(ctx, toLLMHistory(transcript), opts...)
}

// publishEvent is fire-and-forget: a bus failure never changes the response.
func publishEvent(ctx context.Context, publisher IPublisherService, log logger.ILogger, eventType string, data map[string]interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("Events", "Failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
