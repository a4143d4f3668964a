package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/analyzer"
	"github.com/muhammadolammi/resumeforge/internal/api"
	"github.com/muhammadolammi/resumeforge/internal/config"
	"github.com/muhammadolammi/resumeforge/internal/database"
	"github.com/muhammadolammi/resumeforge/internal/llm"
	"github.com/muhammadolammi/resumeforge/internal/logging"
	"github.com/muhammadolammi/resumeforge/internal/queue"
	"github.com/muhammadolammi/resumeforge/internal/storage"
)

// app holds the backends a command needs. Every field except cfg and logger
// is nil when its backend is not configured.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	db        *sql.DB
	store     *database.Store
	files     *storage.Client
	analyzer  *analyzer.Analyzer
	rabbit    *amqp.Connection
	publisher *queue.Publisher
	notifier  *queue.Notifier
}

type requirements struct {
	database bool
	llm      bool
	queue    bool
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp connects every configured backend. A backend listed in need must be
// configured; the rest are optional.
func newApp(ctx context.Context, need requirements) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	if err := a.connect(ctx, need); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) connect(ctx context.Context, need requirements) error {
	cfg := a.cfg

	switch {
	case cfg.DatabaseEnabled():
		db, err := database.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		a.db = db
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		a.store = database.NewStore(db)
	case need.database:
		return fmt.Errorf("empty DB_URL in environment")
	default:
		a.logger.Warn("DB_URL not set; saved drafts, analyses and contact are disabled")
	}

	if cfg.StorageEnabled() {
		files, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		a.files = files
	}

	switch {
	case cfg.RequireLLM() == nil:
		completer, err := llm.New(ctx, cfg.LLM, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create llm client: %w", err)
		}
		a.analyzer = analyzer.New(completer, a.logger)
	case need.llm:
		return cfg.RequireLLM()
	default:
		a.logger.Warn("no llm api key set; resume analysis is disabled", zap.String("provider", cfg.LLM.Provider))
	}

	switch {
	case cfg.QueueEnabled():
		conn, err := amqp.Dial(cfg.Queue.URL)
		if err != nil {
			return fmt.Errorf("error connecting to RabbitMQ: %w", err)
		}
		a.rabbit = conn
		open := queue.ConnOpener(conn)
		a.publisher = queue.NewPublisher(open, cfg.Queue.Queue)
		a.notifier = queue.NewNotifier(open, cfg.Queue.Exchange, a.logger)
	case need.queue:
		return fmt.Errorf("empty RABBITMQ_URL in environment")
	}
	return nil
}

// processor runs analyses against the store. It is nil without both a
// store and an analyzer.
func (a *app) processor() *queue.Processor {
	if a.store == nil || a.analyzer == nil {
		return nil
	}
	var notifier queue.StatusNotifier
	if a.notifier != nil {
		notifier = a.notifier
	}
	return queue.NewProcessor(a.store, a.analyzer, notifier, a.logger)
}

// apiDeps leaves unconfigured backends as nil interfaces so handlers can
// answer 503 for them.
func (a *app) apiDeps() api.Deps {
	deps := api.Deps{Logger: a.logger}
	if a.store != nil {
		deps.Store = a.store
	}
	if a.analyzer != nil {
		deps.Analyzer = a.analyzer
	}
	if a.files != nil {
		deps.Files = a.files
	}
	if a.publisher != nil {
		deps.Queue = a.publisher
	}
	if p := a.processor(); p != nil {
		deps.Processor = p
	}
	return deps
}

func (a *app) close() {
	if a.rabbit != nil {
		if err := a.rabbit.Close(); err != nil {
			a.logger.Warn("failed to close RabbitMQ connection", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
