package queue

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"voucher_mall/internal/model"
)

// AuditConsumer 消费订单事件并落审计表。
// at-least-once 投递靠 event_id 唯一索引幂等：UNIQUE 冲突视为已处理。
type AuditConsumer struct {
	r  *kafka.Reader
	db *gorm.DB
}

func NewAuditConsumer(brokers []string, topic, groupID string, db *gorm.DB) *AuditConsumer {
	return &AuditConsumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		db: db,
	}
}

func (c *AuditConsumer) Close() error { return c.r.Close() }

func (c *AuditConsumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx 取消或连接断开
		}

		var evt OrderCreatedEvent
		if err := json.Unmarshal(m.Value, &evt); err != nil {
			log.Warn().Err(err).Msg("audit consumer unmarshal")
			continue
		}
		if err := evt.Validate(); err != nil {
			log.Warn().Err(err).Str("event_id", evt.EventID).Msg("audit consumer drop invalid event")
			continue
		}

		row := &model.OrderEvent{
			EventID:   evt.EventID,
			OrderID:   evt.OrderID,
			UserID:    evt.UserID,
			VoucherID: evt.VoucherID,
			Kind:      evt.Kind,
		}
		if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
			if errorsLikeUnique(err) {
				continue // 重复事件，已落过
			}
			log.Error().Err(err).Str("event_id", evt.EventID).Msg("audit consumer db create")
			continue
		}
	}
}

func errorsLikeUnique(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique")
}
