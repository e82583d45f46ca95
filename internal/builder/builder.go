package builder

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"university-form-agent/handler"
	"university-form-agent/internal/api"
	"university-form-agent/internal/config"
	"university-form-agent/internal/endpoint"
	"university-form-agent/internal/integrations/gemini"
	"university-form-agent/internal/integrations/mock"
	"university-form-agent/internal/integrations/openai"
	"university-form-agent/internal/integrations/paramstore"
	"university-form-agent/internal/repository"
	"university-form-agent/internal/usecase"
)

// core holds everything both transports share.
type core struct {
	cfg       *config.Config
	logger    *zap.Logger
	endpoints *endpoint.Endpoints
}

// awsLoader loads the AWS SDK configuration at most once, and only when a
// component needs it.
type awsLoader func(ctx context.Context) (aws.Config, error)

func defaultAWSLoader() awsLoader {
	var (
		once sync.Once
		cfg  aws.Config
		err  error
	)
	return func(ctx context.Context) (aws.Config, error) {
		once.Do(func() { cfg, err = awsconfig.LoadDefaultConfig(ctx) })
		return cfg, err
	}
}

// Build creates the HTTP application for the serve command.
func Build(environment string) (*App, error) {
	c, err := buildCore(context.Background(), environment, defaultAWSLoader())
	if err != nil {
		return nil, err
	}

	router := api.SetupRouter(c.endpoints, c.logger, c.cfg.LLM.Timeout+10*time.Second)
	c.logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: c.cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully", zap.String("environment", c.cfg.Environment))
	return &App{server: server, logger: c.logger}, nil
}

// BuildLambda creates the API Gateway handler for the lambda command.
func BuildLambda(environment string) (*handler.Handler, *zap.Logger, error) {
	c, err := buildCore(context.Background(), environment, defaultAWSLoader())
	if err != nil {
		return nil, nil, err
	}
	h, err := handler.NewHandler(c.endpoints, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create handler: %w", err)
	}
	c.logger.Info("Lambda handler built successfully", zap.String("environment", c.cfg.Environment))
	return h, c.logger, nil
}

func buildCore(ctx context.Context, environment string, loadAWS awsLoader) (*core, error) {
	cfg, err := config.Load(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("store_backend", cfg.Store.Backend),
	)

	endpoints, err := wire(ctx, cfg, logger, loadAWS)
	if err != nil {
		return nil, err
	}
	return &core{cfg: cfg, logger: logger, endpoints: endpoints}, nil
}

func wire(ctx context.Context, cfg *config.Config, logger *zap.Logger, loadAWS awsLoader) (*endpoint.Endpoints, error) {
	model, err := newModel(ctx, cfg, logger, loadAWS)
	if err != nil {
		return nil, fmt.Errorf("setup model: %w", err)
	}
	store, err := newStore(ctx, cfg, logger, loadAWS)
	if err != nil {
		return nil, fmt.Errorf("setup store: %w", err)
	}

	dialogue, err := usecase.NewDialogueEngine(model, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	generator, err := usecase.NewGenerationEngine(model, store, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	assistant, err := usecase.NewAssistant(store, dialogue, generator)
	if err != nil {
		return nil, err
	}
	logger.Info("Use cases initialized")

	return endpoint.New(assistant)
}

func setupLogger(level string) (*zap.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func newModel(ctx context.Context, cfg *config.Config, logger *zap.Logger, loadAWS awsLoader) (usecase.Model, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock model")
		return mock.NewModel(), nil
	}

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		tokens, err := newTokenSource(ctx, cfg, loadAWS)
		if err != nil {
			return nil, err
		}
		opts := []openai.Option{openai.WithHTTPClient(&http.Client{Timeout: cfg.LLM.Timeout})}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
		}
		logger.Info("Using OpenAI-compatible model", zap.String("model", cfg.LLM.Model))
		client, err := openai.NewClient(tokens, cfg.LLM.Model, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.ProviderGemini:
		gc := gemini.Config{
			Backend:  cfg.LLM.GeminiBackend,
			Project:  cfg.LLM.GCPProject,
			Location: cfg.LLM.GCPLocation,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
		}
		if gc.Backend != gemini.BackendVertex {
			tokens, err := newTokenSource(ctx, cfg, loadAWS)
			if err != nil {
				return nil, err
			}
			// genai takes the key at construction.
			if gc.APIKey, err = tokens.Token(ctx); err != nil {
				return nil, fmt.Errorf("resolve gemini api key: %w", err)
			}
		}
		logger.Info("Using Gemini model", zap.String("model", cfg.LLM.Model), zap.String("backend", cfg.LLM.GeminiBackend))
		client, err := gemini.New(ctx, gc)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// newTokenSource prefers LLM_API_KEY and falls back to Parameter Store.
func newTokenSource(ctx context.Context, cfg *config.Config, loadAWS awsLoader) (paramstore.TokenSource, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) != "" {
		return paramstore.StaticToken(cfg.LLM.APIKey), nil
	}
	awsCfg, err := loadAWS(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}
	return paramstore.NewParameterToken(ps, cfg.TokenParameter())
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, loadAWS awsLoader) (usecase.ConversationStore, error) {
	switch cfg.Store.Backend {
	case config.StoreDynamoDB:
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		logger.Info("Using DynamoDB conversation store", zap.String("table", cfg.Store.Table))
		store, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), cfg.Store.Table, cfg.Store.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		logger.Info("Using in-memory conversation store")
		return repository.NewMemoryStore(), nil
	}
}
