package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"trading-chat-be/internal/constant"
	"trading-chat-be/internal/dto"
	"trading-chat-be/internal/pkg/logger"
	"trading-chat-be/internal/repository/memory"
	"trading-chat-be/pkg/llm"
	"trading-chat-be/pkg/spreadsheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const statementCSV = "Month,Revenue\nJanuary,1200\nFebruary,1500\n"

type financialFixture struct {
	svc       IFinancialDataService
	provider  *mockLLM
	repo      *memory.SessionRepository
	pub       *recordingPublisher
	uploadDir string
}

func newFinancialFixture(t *testing.T) *financialFixture {
	t.Helper()
	f := &financialFixture{
		provider:  &mockLLM{},
		repo:      memory.NewSessionRepository(0, 0),
		pub:       &recordingPublisher{},
		uploadDir: t.TempDir(),
	}
	f.svc = NewFinancialDataService(f.repo, spreadsheet.NewFileConverter(), f.provider, f.pub, logger.NewNopLogger(), FinancialDataConfig{
		AnalysisModel: "gpt-3.5-turbo",
		UploadDir:     f.uploadDir,
	})
	return f
}

func (f *financialFixture) leftovers(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(f.uploadDir)
	require.NoError(t, err)
	return entries
}

func TestUploadFinancialData_Success(t *testing.T) {
	f := newFinancialFixture(t)

	f.provider.On("Chat", mock.Anything, mock.MatchedBy(func(h []llm.Message) bool {
		return len(h) == 2 &&
			h[0].Content == constant.FinancialAdvisorSystemPrompt &&
			strings.HasPrefix(h[1].Content, "Here's the financial data I've uploaded: [") &&
			strings.Contains(h[1].Content, `"Month": "January"`)
	}), "gpt-3.5-turbo").Return("Revenue is growing.", nil).Once()

	res, err := f.svc.UploadFinancialData(context.Background(),
		&dto.UploadFinancialDataRequest{UserId: "u1", FileName: "statement.csv"},
		strings.NewReader(statementCSV))
	require.NoError(t, err)
	assert.True(t, res.DataReceived)
	assert.Equal(t, constant.UploadSucceededMessage, res.Message)

	data, err := f.svc.GetFinancialData(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, data.Data, 2)
	v, _ := data.Data[1].Get("Revenue")
	assert.Equal(t, float64(1500), v)

	history := f.repo.Recent("u1", 25)
	require.Len(t, history, 3)
	assert.Equal(t, "Revenue is growing.", history[2].Content)

	assert.Empty(t, f.leftovers(t))
	assert.Equal(t, []string{constant.EventFinancialDataStored}, f.pub.types())
	f.provider.AssertExpectations(t)
}

func TestUploadFinancialData_AnalysisFailureStoresNothing(t *testing.T) {
	f := newFinancialFixture(t)
	f.provider.On("Chat", mock.Anything, mock.Anything, "gpt-3.5-turbo").Return("", errors.New("rate limited")).Once()

	res, err := f.svc.UploadFinancialData(context.Background(),
		&dto.UploadFinancialDataRequest{UserId: "u1", FileName: "statement.csv"},
		strings.NewReader(statementCSV))
	assert.Nil(t, res)

	var upstreamErr *dto.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)

	_, err = f.svc.GetFinancialData(context.Background(), "u1")
	assert.ErrorIs(t, err, dto.ErrFinancialDataMissing)

	// the data message stays in the transcript
	assert.Len(t, f.repo.Recent("u1", 25), 2)
	assert.Empty(t, f.leftovers(t))
	assert.Equal(t, []string{constant.EventFinancialDataFailed}, f.pub.types())
}

func TestUploadFinancialData_ConversionFailure(t *testing.T) {
	f := newFinancialFixture(t)

	_, err := f.svc.UploadFinancialData(context.Background(),
		&dto.UploadFinancialDataRequest{UserId: "u1", FileName: "statement.xlsx"},
		strings.NewReader("definitely not a workbook"))

	var convErr *spreadsheet.ConversionError
	require.ErrorAs(t, err, &convErr)

	assert.Empty(t, f.leftovers(t))
	assert.Empty(t, f.repo.Recent("u1", 25))
	f.provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadFinancialData_KeepsExistingChatTranscript(t *testing.T) {
	f := newFinancialFixture(t)
	f.repo.GetOrCreateTranscript("u1", constant.TradingPsychologistSystemPrompt)

	f.provider.On("Chat", mock.Anything, mock.MatchedBy(func(h []llm.Message) bool {
		return h[0].Content == constant.TradingPsychologistSystemPrompt
	}), "gpt-3.5-turbo").Return("noted", nil).Once()

	_, err := f.svc.UploadFinancialData(context.Background(),
		&dto.UploadFinancialDataRequest{UserId: "u1", FileName: "statement.csv"},
		strings.NewReader(statementCSV))
	require.NoError(t, err)
	f.provider.AssertExpectations(t)
}

func TestUploadFinancialData_ReplacesPreviousRecords(t *testing.T) {
	f := newFinancialFixture(t)
	f.provider.On("Chat", mock.Anything, mock.Anything, "gpt-3.5-turbo").Return("ok", nil).Twice()

	_, err := f.svc.UploadFinancialData(context.Background(),
		&dto.UploadFinancialDataRequest{UserId: "u1", FileName: "a.csv"},
		strings.NewReader(statementCSV))
	require.NoError(t, err)
	_, err = f.svc.UploadFinancialData(context.Background(),
		&dto.UploadFinancialDataRequest{UserId: "u1", FileName: "b.csv"},
		strings.NewReader("Month,Revenue\nMarch,2000\n"))
	require.NoError(t, err)

	data, err := f.svc.GetFinancialData(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, data.Data, 1)
	month, _ := data.Data[0].Get("Month")
	assert.Equal(t, "March", month)
}

func TestGetFinancialData_UnknownUser(t *testing.T) {
	f := newFinancialFixture(t)

	res, err := f.svc.GetFinancialData(context.Background(), "nobody")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, dto.ErrFinancialDataMissing)
}
