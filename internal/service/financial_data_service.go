package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trading-chat-be/internal/constant"
	"trading-chat-be/internal/dto"
	"trading-chat-be/internal/pkg/logger"
	"trading-chat-be/internal/repository/contract"
	"trading-chat-be/pkg/llm"
	"trading-chat-be/pkg/spreadsheet"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type IFinancialDataService interface {
	UploadFinancialData(ctx context.Context, request *dto.UploadFinancialDataRequest, file io.Reader) (*dto.UploadFinancialDataResponse, error)
	GetFinancialData(ctx context.Context, userId string) (*dto.GetFinancialDataResponse, error)
}

type FinancialDataConfig struct {
	AnalysisModel string
	UploadDir     string
	Timeout       time.Duration
}

type financialDataService struct {
	sessionRepo contract.ISessionRepository
	converter   spreadsheet.Converter
	llmProvider llm.LLMProvider
	publisher   IPublisherService
	logger      logger.ILogger
	cfg         FinancialDataConfig
}

func NewFinancialDataService(
	sessionRepo contract.ISessionRepository,
	converter spreadsheet.Converter,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	log logger.ILogger,
	cfg FinancialDataConfig,
) IFinancialDataService {
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	return &financialDataService{
		sessionRepo: sessionRepo,
		converter:   converter,
		llmProvider: llmProvider,
		publisher:   publisher,
		logger:      log,
		cfg:         cfg,
	}
}

// UploadFinancialData converts the upload, asks the model to analyze it and
// stores the rows for the user. The temp copy of the upload is removed on
// every path. Records are only stored when the analysis succeeds; the
// data message appended to the transcript is kept either way.
func (fs *financialDataService) UploadFinancialData(
	ctx context.Context,
	request *dto.UploadFinancialDataRequest,
	file io.Reader,
) (*dto.UploadFinancialDataResponse, error) {
	ctx, span := tracer.Start(ctx, "FinancialDataService.UploadFinancialData")
	defer span.End()
	span.SetAttributes(
		attribute.String("upload.user_id", request.UserId),
		attribute.String("upload.file_name", request.FileName),
	)

	tempPath, err := fs.saveTemp(file, request.FileName)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store upload: %w", err)
	}
	defer fs.removeTemp(tempPath)

	records, err := fs.converter.Convert(tempPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "conversion failed")
		fs.logger.Error("FinancialDataService", "Failed to convert upload", map[string]interface{}{
			"user_id":   request.UserId,
			"file_name": request.FileName,
			"error":     err,
		})
		publishEvent(ctx, fs.publisher, fs.logger, constant.EventFinancialDataFailed, map[string]interface{}{
			"user_id": request.UserId,
			"stage":   "conversion",
		})
		return nil, err
	}
	span.SetAttributes(attribute.Int("upload.records", len(records)))

	dataString, err := spreadsheet.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("serialize records: %w", err)
	}

	unlock := fs.sessionRepo.Lock(request.UserId)
	defer unlock()

	session := fs.sessionRepo.GetOrCreateTranscript(request.UserId, constant.FinancialAdvisorSystemPrompt)
	prompt := fmt.Sprintf(constant.FinancialDataAnalysisPromptFormat, dataString)
	if err := fs.sessionRepo.Append(request.UserId, constant.ChatMessageRoleUser, prompt); err != nil {
		return nil, fmt.Errorf("append data message: %w", err)
	}

	reply, err := complete(ctx, fs.llmProvider, fs.cfg.Timeout, session.Messages(), llm.WithModel(fs.cfg.AnalysisModel))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		fs.logger.Error("FinancialDataService", "Analysis completion failed", map[string]interface{}{
			"user_id": request.UserId,
			"model":   fs.cfg.AnalysisModel,
			"error":   err,
		})
		publishEvent(ctx, fs.publisher, fs.logger, constant.EventFinancialDataFailed, map[string]interface{}{
			"user_id": request.UserId,
			"stage":   "analysis",
		})
		return nil, &dto.UpstreamError{Op: "upload", Err: err}
	}

	if err := fs.sessionRepo.Append(request.UserId, constant.ChatMessageRoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("append analysis: %w", err)
	}
	fs.sessionRepo.SetRecords(request.UserId, records)

	fs.logger.Info("FinancialDataService", "Financial data stored", map[string]interface{}{
		"user_id": request.UserId,
		"records": len(records),
	})
	publishEvent(ctx, fs.publisher, fs.logger, constant.EventFinancialDataStored, map[string]interface{}{
		"user_id": request.UserId,
		"records": len(records),
	})

	return &dto.UploadFinancialDataResponse{
		Message:      constant.UploadSucceededMessage,
		DataReceived: true,
	}, nil
}

func (fs *financialDataService) GetFinancialData(ctx context.Context, userId string) (*dto.GetFinancialDataResponse, error) {
	records, ok := fs.sessionRepo.GetRecords(userId)
	if !ok {
		return nil, dto.ErrFinancialDataMissing
	}
	return &dto.GetFinancialDataResponse{Data: records}, nil
}

// saveTemp copies the upload into UploadDir under a random name that keeps
// the original extension, since the converter dispatches on it.
func (fs *financialDataService) saveTemp(file io.Reader, fileName string) (string, error) {
	if err := os.MkdirAll(fs.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(fs.cfg.UploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(fileName)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		fs.removeTemp(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		fs.removeTemp(path)
		return "", err
	}
	return path, nil
}

func (fs *financialDataService) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fs.logger.Warn("FinancialDataService", "Failed to delete temp upload", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}
