package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"trading-chat-be/internal/constant"
	"trading-chat-be/internal/dto"
	"trading-chat-be/internal/pkg/logger"
	"trading-chat-be/internal/repository/memory"
	"trading-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChatbotFixture() (*chatbotService, *mockLLM, *memory.SessionRepository, *recordingPublisher) {
	repo := memory.NewSessionRepository(0, 0)
	provider := &mockLLM{}
	pub := &recordingPublisher{}
	svc := NewChatbotService(repo, provider, pub, logger.NewNopLogger(), ChatbotConfig{ChatModel: "gpt-4"})
	return svc.(*chatbotService), provider, repo, pub
}

func TestSendChat_SeedsTradingPromptAndAppendsReply(t *testing.T) {
	svc, provider, repo, pub := newChatbotFixture()

	provider.On("Chat", mock.Anything, []llm.Message{
		{Role: "system", Content: constant.TradingPsychologistSystemPrompt},
		{Role: "user", Content: "I feel anxious about my trade"},
	}, "gpt-4").Return("That's understandable.", nil).Once()

	res, err := svc.SendChat(context.Background(), &dto.SendChatRequest{UserId: "u1", Message: "I feel anxious about my trade"})
	require.NoError(t, err)
	assert.Equal(t, "That's understandable.", res.Response)

	history := repo.Recent("u1", 25)
	require.Len(t, history, 3)
	assert.Equal(t, constant.ChatMessageRoleSystem, history[0].Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, history[2].Role)
	assert.Equal(t, "That's understandable.", history[2].Content)

	assert.Equal(t, []string{constant.EventChatReplied}, pub.types())
	provider.AssertExpectations(t)
}

func TestSendChat_SecondTurnSeesWholeTranscript(t *testing.T) {
	svc, provider, repo, _ := newChatbotFixture()

	provider.On("Chat", mock.Anything, mock.MatchedBy(func(h []llm.Message) bool { return len(h) == 2 }), "gpt-4").
		Return("a1", nil).Once()
	provider.On("Chat", mock.Anything, mock.MatchedBy(func(h []llm.Message) bool {
		return len(h) == 4 && h[2].Content == "a1" && h[3].Content == "u2"
	}), "gpt-4").Return("a2", nil).Once()

	_, err := svc.SendChat(context.Background(), &dto.SendChatRequest{UserId: "u1", Message: "u1"})
	require.NoError(t, err)
	_, err = svc.SendChat(context.Background(), &dto.SendChatRequest{UserId: "u1", Message: "u2"})
	require.NoError(t, err)

	var contents []string
	for _, m := range repo.Recent("u1", 25) {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{constant.TradingPsychologistSystemPrompt, "u1", "a1", "u2", "a2"}, contents)
	provider.AssertExpectations(t)
}

func TestSendChat_FailureKeepsUserMessage(t *testing.T) {
	svc, provider, repo, pub := newChatbotFixture()
	upstream := errors.New("boom")

	provider.On("Chat", mock.Anything, mock.Anything, "gpt-4").Return("", upstream).Once()

	res, err := svc.SendChat(context.Background(), &dto.SendChatRequest{UserId: "u1", Message: "hello"})
	assert.Nil(t, res)

	var upstreamErr *dto.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.ErrorIs(t, err, upstream)

	history := repo.Recent("u1", 25)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[1].Content)
	assert.Equal(t, []string{constant.EventChatFailed}, pub.types())
}

func TestSendChat_ExistingTranscriptIsNotReseeded(t *testing.T) {
	svc, provider, repo, _ := newChatbotFixture()
	repo.GetOrCreateTranscript("u1", constant.FinancialAdvisorSystemPrompt)

	provider.On("Chat", mock.Anything, mock.MatchedBy(func(h []llm.Message) bool {
		return h[0].Content == constant.FinancialAdvisorSystemPrompt
	}), "gpt-4").Return("ok", nil).Once()

	_, err := svc.SendChat(context.Background(), &dto.SendChatRequest{UserId: "u1", Message: "hi"})
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestSendChat_PublisherFailureDoesNotFailTurn(t *testing.T) {
	svc, provider, _, pub := newChatbotFixture()
	pub.err = errors.New("bus down")

	provider.On("Chat", mock.Anything, mock.Anything, "gpt-4").Return("fine", nil).Once()

	res, err := svc.SendChat(context.Background(), &dto.SendChatRequest{UserId: "u1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "fine", res.Response)
}

func TestGetChatHistory(t *testing.T) {
	t.Run("unknown user returns empty list", func(t *testing.T) {
		svc, _, _, _ := newChatbotFixture()

		res, err := svc.GetChatHistory(context.Background(), "nobody")
		require.NoError(t, err)
		assert.NotNil(t, res.Messages)
		assert.Empty(t, res.Messages)
	})

	t.Run("returns the last 25 messages", func(t *testing.T) {
		svc, _, repo, _ := newChatbotFixture()
		repo.GetOrCreateTranscript("u1", "sys")
		for i := 0; i < 29; i++ {
			require.NoError(t, repo.Append("u1", constant.ChatMessageRoleUser, fmt.Sprintf("m%d", i)))
		}

		res, err := svc.GetChatHistory(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, res.Messages, 25)
		assert.Equal(t, "m4", res.Messages[0].Content)
		assert.Equal(t, "m28", res.Messages[24].Content)
	})
}
