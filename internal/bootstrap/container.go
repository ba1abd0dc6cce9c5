package bootstrap

import (
	"context"

	"trading-chat-be/internal/config"
	"trading-chat-be/internal/controller"
	"trading-chat-be/internal/pkg/logger"
	"trading-chat-be/internal/repository/memory"
	"trading-chat-be/internal/service"
	"trading-chat-be/pkg/llm"
	"trading-chat-be/pkg/llm/factory"
	pktNats "trading-chat-be/pkg/nats"
	"trading-chat-be/pkg/spreadsheet"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	ChatbotController       controller.IChatbotController
	FinancialDataController controller.IFinancialDataController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger      logger.ILogger
	SessionRepo *memory.SessionRepository

	closers []func()
}

// Overrides lets tests swap infrastructure without touching the wiring.
type Overrides struct {
	LLMProvider llm.LLMProvider
	Converter   spreadsheet.Converter
	Logger      logger.ILogger
	EventLogger logger.ILogger
}

func NewContainer(cfg *config.Config) (*Container, error) {
	return NewContainerWith(cfg, Overrides{})
}

func NewContainerWith(cfg *config.Config, o Overrides) (*Container, error) {
	// 1. Core Facades
	sysLogger := o.Logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	eventLogger := o.EventLogger
	if eventLogger == nil {
		eventLogger = logger.NewIsolatedLogger(cfg.App.EventLogFilePath)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	var closers []func()
	closers = append(closers, func() { pubSub.Close() })

	// NATS is optional: without it events stay in-process
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			closers = append(closers, natsPub.Close)
		}
	}

	// 3. Infrastructure
	llmProvider := o.LLMProvider
	if llmProvider == nil {
		p, err := factory.NewLLMProvider(factory.ProviderConfig{
			Provider:      cfg.Ai.LLMProvider,
			Model:         cfg.Ai.ChatModel,
			OpenAIAPIKey:  cfg.Keys.OpenAI,
			OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
			OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		})
		if err != nil {
			return nil, err
		}
		llmProvider = p
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider":       cfg.Ai.LLMProvider,
		"chat_model":     cfg.Ai.ChatModel,
		"analysis_model": cfg.Ai.AnalysisModel,
	})

	converter := o.Converter
	if converter == nil {
		converter = spreadsheet.NewFileConverter()
	}

	sessionRepo := memory.NewSessionRepository(cfg.Session.IdleTTL, cfg.Session.MaxMessages)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.EventsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventsTopic, eventLogger, forwarder)

	chatbotService := service.NewChatbotService(sessionRepo, llmProvider, publisherService, sysLogger, service.ChatbotConfig{
		ChatModel:    cfg.Ai.ChatModel,
		HistoryLimit: cfg.Session.HistoryLimit,
		Timeout:      cfg.Ai.Timeout,
	})
	financialDataService := service.NewFinancialDataService(sessionRepo, converter, llmProvider, publisherService, sysLogger, service.FinancialDataConfig{
		AnalysisModel: cfg.Ai.AnalysisModel,
		UploadDir:     cfg.App.UploadDir,
		Timeout:       cfg.Ai.Timeout,
	})

	// 5. Controllers
	return &Container{
		ChatbotController:       controller.NewChatbotController(chatbotService),
		FinancialDataController: controller.NewFinancialDataController(financialDataService),
		ConsumerService:         consumerService,
		Logger:                  sysLogger,
		SessionRepo:             sessionRepo,
		closers:                 closers,
	}, nil
}

// StartBackground launches the event consumer.
func (c *Container) StartBackground(ctx context.Context) error {
	return c.ConsumerService.Consume(ctx)
}

// Close releases the event bus and external connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
