package service

import (
	"context"
	"fmt"
	"time"

	"trading-chat-be/internal/constant"
	"trading-chat-be/internal/dto"
	"trading-chat-be/internal/pkg/logger"
	"trading-chat-be/internal/repository/contract"
	"trading-chat-be/pkg/llm"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetChatHistory(ctx context.Context, userId string) (*dto.GetChatHistoryResponse, error)
}

type ChatbotConfig struct {
	ChatModel    string
	HistoryLimit int
	Timeout      time.Duration
}

type chatbotService struct {
	sessionRepo contract.ISessionRepository
	llmProvider llm.LLMProvider
	publisher   IPublisherService
	logger      logger.ILogger
	cfg         ChatbotConfig
}

func NewChatbotService(
	sessionRepo contract.ISessionRepository,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	log logger.ILogger,
	cfg ChatbotConfig,
) IChatbotService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 25
	}
	return &chatbotService{
		sessionRepo: sessionRepo,
		llmProvider: llmProvider,
		publisher:   publisher,
		logger:      log,
		cfg:         cfg,
	}
}

// SendChat runs one conversational turn. The user message stays in the
// transcript even when the completion fails, so the next turn sees it.
func (cs *chatbotService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	ctx, span := tracer.Start(ctx, "ChatbotService.SendChat")
	defer span.End()
	span.SetAttributes(attribute.String("chat.user_id", request.UserId))

	unlock := cs.sessionRepo.Lock(request.UserId)
	defer unlock()

	session := cs.sessionRepo.GetOrCreateTranscript(request.UserId, constant.TradingPsychologistSystemPrompt)
	if err := cs.sessionRepo.Append(request.UserId, constant.ChatMessageRoleUser, request.Message); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	transcript := session.Messages()
	span.SetAttributes(attribute.Int("chat.transcript_len", len(transcript)))

	reply, err := complete(ctx, cs.llmProvider, cs.cfg.Timeout, transcript, llm.WithModel(cs.cfg.ChatModel))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		cs.logger.Error("ChatbotService", "Completion failed", map[string]interface{}{
			"user_id": request.UserId,
			"model":   cs.cfg.ChatModel,
			"error":   err,
		})
		publishEvent(ctx, cs.publisher, cs.logger, constant.EventChatFailed, map[string]interface{}{
			"user_id": request.UserId,
		})
		return nil, &dto.UpstreamError{Op: "chat", Err: err}
	}

	if err := cs.sessionRepo.Append(request.UserId, constant.ChatMessageRoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	cs.logger.Info("ChatbotService", "Reply generated", map[string]interface{}{
		"user_id":        request.UserId,
		"transcript_len": len(transcript) + 1,
	})
	publishEvent(ctx, cs.publisher, cs.logger, constant.EventChatReplied, map[string]interface{}{
		"user_id":        request.UserId,
		"transcript_len": len(transcript) + 1,
	})

	return &dto.SendChatResponse{Response: reply}, nil
}

func (cs *chatbotService) GetChatHistory(ctx context.Context, userId string) (*dto.GetChatHistoryResponse, error) {
	recent := cs.sessionRepo.Recent(userId, cs.cfg.HistoryLimit)

	messages := make([]dto.ChatMessageDTO, len(recent))
	for i, m := range recent {
		messages[i] = dto.ChatMessageDTO{Role: m.Role, Content: m.Content}
	}
	return &dto.GetChatHistoryResponse{Messages: messages}, nil
}
