package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialgraph/internal/queue"
)

const (
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages read per call
	DefaultBatchSize = 10

	// DefaultBlockTimeout bounds each blocking read, which is also how quickly
	// a worker notices cancellation.
	DefaultBlockTimeout = 5 * time.Second

	readErrorBackoff = time.Second
)

// Manager runs worker goroutines that consume the graph stream.
type Manager struct {
	consumer     queue.Consumer
	handler      *Handler
	workerCount  int
	batchSize    int64
	blockTime    time.Duration
	consumerName string
	log          *zap.Logger
}

type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration

	// ConsumerName prefixes each worker's consumer name. It must be stable
	// across restarts so pending messages are picked up again.
	ConsumerName string
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
		ConsumerName: "worker",
	}
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig, log *zap.Logger) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = "worker"
	}

	return &Manager{
		consumer:     consumer,
		handler:      handler,
		workerCount:  cfg.WorkerCount,
		batchSize:    cfg.BatchSize,
		blockTime:    cfg.BlockTimeout,
		consumerName: cfg.ConsumerName,
		log:          log.Named("manager"),
	}
}

// Run ensures the consumer group exists, then blocks running the workers until
// ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, queue.StreamGraph, queue.ConsumerGroupFeed); err != nil {
		return err
	}

	m.log.Info("starting workers",
		zap.Int("count", m.workerCount),
		zap.String("stream", queue.StreamGraph),
		zap.String("group", queue.ConsumerGroupFeed))

	g, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= m.workerCount; i++ {
		id := i
		g.Go(func() error {
			m.runWorker(ctx, id, m.consumerNameFor(id))
			return nil
		})
	}

	err := g.Wait()
	m.log.Info("all workers stopped")
	return err
}

func (m *Manager) runWorker(ctx context.Context, workerID int, consumerName string) {
	log := m.log.With(zap.Int("worker", workerID), zap.String("consumer", consumerName))
	log.Debug("worker started")

	// crash recovery: messages delivered to this consumer but never acked
	m.processPending(ctx, log, consumerName)

	for ctx.Err() == nil {
		m.processMessages(ctx, log, consumerName)
	}
	log.Debug("worker shutting down")
}

func (m *Manager) processPending(ctx context.Context, log *zap.Logger, consumerName string) {
	for ctx.Err() == nil {
		messages, err := m.consumer.ReadPending(ctx, queue.StreamGraph, queue.ConsumerGroupFeed, consumerName, m.batchSize)
		if err != nil {
			log.Warn("read pending failed", zap.Error(err))
			return
		}
		if len(messages) == 0 {
			return
		}

		log.Info("replaying pending messages", zap.Int("count", len(messages)))
		m.handleMessages(ctx, log, messages)
	}
}

func (m *Manager) processMessages(ctx context.Context, log *zap.Logger, consumerName string) {
	messages, err := m.consumer.Read(ctx, queue.StreamGraph, queue.ConsumerGroupFeed, consumerName, m.batchSize, m.blockTime)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn("read failed", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(readErrorBackoff):
		}
		return
	}

	m.handleMessages(ctx, log, messages)
}

// handleMessages processes and acks each message. Failed events are acked too;
// the feed tolerates a missed update.
func (m *Manager) handleMessages(ctx context.Context, log *zap.Logger, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(ctx, msg.Event); err != nil {
			log.Warn("handler error", zap.String("msg_id", msg.ID), zap.Error(err))
		}

		if err := m.consumer.Ack(ctx, queue.StreamGraph, queue.ConsumerGroupFeed, msg.ID); err != nil {
			log.Warn("ack failed", zap.String("msg_id", msg.ID), zap.Error(err))
		}
	}
}

func (m *Manager) consumerNameFor(workerID int) string {
	return fmt.Sprintf("%s-%d", m.consumerName, workerID)
}
