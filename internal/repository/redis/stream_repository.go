package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/domain/repository"
)

const (
	defaultReadCount = 10
	defaultReadBlock = time.Second
	defaultClaimIdle = 30 * time.Second
	readErrorBackoff = time.Second
)

type streamRepository struct {
	client    *redis.Client
	logger    *zap.Logger
	readCount int64
	readBlock time.Duration
	claimIdle time.Duration
}

// NewStreamRepository создает новый экземпляр StreamRepository.
// readCount и readBlock - параметры XREADGROUP, claimIdle - сколько сообщение
// должно пролежать в pending без ACK, прежде чем его заберёт XAUTOCLAIM.
// Нули заменяются дефолтами.
func NewStreamRepository(client *redis.Client, logger *zap.Logger, readCount int64, readBlock, claimIdle time.Duration) repository.StreamRepository {
	if readCount <= 0 {
		readCount = defaultReadCount
	}
	if readBlock <= 0 {
		readBlock = defaultReadBlock
	}
	if claimIdle <= 0 {
		claimIdle = defaultClaimIdle
	}
	return &streamRepository{
		client:    client,
		logger:    logger,
		readCount: readCount,
		readBlock: readBlock,
		claimIdle: claimIdle,
	}
}

// CreateConsumerGroup создаёт consumer group для стрима
func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	// MKSTREAM создаёт стрим, если его нет; читаем только новые сообщения
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			r.logger.Debug("Consumer group already exists",
				zap.String("stream", stream),
				zap.String("group", group))
			return nil
		}
		r.logger.Error("Failed to create consumer group",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.Info("Consumer group created",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

// ConsumeStream читает сообщения из стрима в канал, пока не отменён ctx.
// Сначала и затем раз в claimIdle забирает через XAUTOCLAIM зависшие pending-сообщения
// группы (свои неподтверждённые и оставшиеся от упавших consumer'ов), потом читает новые.
// Канал закрывается при завершении.
func (r *streamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	msgChan := make(chan domain.StreamMessage, r.readCount)

	go func() {
		defer close(msgChan)

		var lastClaim time.Time
		for {
			if ctx.Err() != nil {
				r.logger.Info("Stream consumer stopped",
					zap.String("stream", stream),
					zap.String("consumer", consumer))
				return
			}

			if time.Since(lastClaim) >= r.claimIdle {
				lastClaim = time.Now()
				if !r.claimPending(ctx, stream, group, consumer, msgChan) {
					return
				}
			}

			result, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{stream, ">"},
				Count:    r.readCount,
				Block:    r.readBlock,
			}).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("Failed to read from stream",
					zap.String("stream", stream),
					zap.Error(err))
				select {
				case <-time.After(readErrorBackoff):
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, s := range result {
				if !r.deliver(ctx, s.Messages, msgChan) {
					return
				}
			}
		}
	}()

	return msgChan, nil
}

// claimPending переназначает на consumer все pending-сообщения старше claimIdle
// и отдаёт их в канал. false - ctx отменён.
func (r *streamRepository) claimPending(ctx context.Context, stream, group, consumer string, out chan<- domain.StreamMessage) bool {
	start := "0-0"
	for {
		messages, next, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    group,
			Consumer: consumer,
			MinIdle:  r.claimIdle,
			Start:    start,
			Count:    r.readCount,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			r.logger.Warn("Failed to claim pending messages",
				zap.String("stream", stream),
				zap.String("group", group),
				zap.Error(err))
			return true
		}

		if len(messages) > 0 {
			r.logger.Info("Pending messages claimed",
				zap.String("stream", stream),
				zap.String("consumer", consumer),
				zap.Int("count", len(messages)))
		}
		if !r.deliver(ctx, messages, out) {
			return false
		}

		// "0-0" - pending-список пройден целиком
		if next == "" || next == "0-0" {
			return true
		}
		start = next
	}
}

func (r *streamRepository) deliver(ctx context.Context, messages []redis.XMessage, out chan<- domain.StreamMessage) bool {
	for _, msg := range messages {
		// JSON лежит в поле "data"; без него сообщение пустое
		data, _ := msg.Values["data"].(string)
		if data == "" {
			r.logger.Warn("Message does not contain 'data' field",
				zap.String("message_id", msg.ID))
		}

		select {
		case out <- domain.StreamMessage{ID: msg.ID, Data: data}:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// AckMessage подтверждает обработку сообщения
func (r *streamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	err := r.client.XAck(ctx, stream, group, messageID).Err()
	if err != nil {
		r.logger.Error("Failed to acknowledge message",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.String("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to acknowledge message: %w", err)
	}

	r.logger.Debug("Message acknowledged", zap.String("message_id", messageID))
	return nil
}

// PublishToStream публикует сообщение в стрим
func (r *streamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("Failed to marshal data",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(jsonData),
		},
	}).Result()
	if err != nil {
		r.logger.Error("Failed to publish to stream",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Message published to stream",
		zap.String("stream", stream),
		zap.String("message_id", id))
	return nil
}
