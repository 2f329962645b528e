package order_status_changed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/service/orderevents"
	"dispatch/pkg/logger"

	"github.com/IBM/sarama"
)

type Handler struct {
	orderEvents              Service
	log                      handlerLogger
	messageProcessingTimeout time.Duration
}

func New(log handlerLogger, orderEvents Service, timeout time.Duration) *Handler {
	handlerLog := log.With(logger.NewField("handler", "order.status.changed"))

	return &Handler{
		orderEvents:              orderEvents,
		log:                      handlerLog,
		messageProcessingTimeout: timeout,
	}
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				h.log.Info("claim messages closed, exiting ConsumeClaim")
				return nil
			}

			if shouldExit := h.messageProcessing(sess, message); shouldExit {
				return nil
			}

		case <-sess.Context().Done():
			h.log.Info("session context done, exiting ConsumeClaim")
			return nil
		}
	}
}

// messageProcessing обрабатывает одно сообщение. true - прервать ConsumeClaim без коммита
// оффсета, сообщение будет прочитано заново.
func (h *Handler) messageProcessing(sess sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) bool {
	ctx, cancel := context.WithTimeout(sess.Context(), h.messageProcessingTimeout)
	defer cancel()

	shouldExit := h.process(ctx, message)
	if !shouldExit {
		sess.MarkMessage(message, "")
	}
	return shouldExit
}

func (h *Handler) process(ctx context.Context, message *sarama.ConsumerMessage) bool {
	var event statusChangedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.log.Error("bad message",
			logger.NewField("offset", message.Offset),
			logger.NewField("error", err),
		)
		return false
	}

	msgLog := h.log.With(
		logger.NewField("order_id", event.OrderID),
		logger.NewField("event_status", event.Status),
		logger.NewField("offset", message.Offset),
	)

	order, err := h.orderEvents.Process(ctx, event.toDomain())
	switch {
	case err == nil:
		msgLog.Info("processed", logger.NewField("status", order.Status))
		return false

	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		msgLog.Warn("context cancelled, message will be reprocessed", logger.NewField("error", err))
		return true

	case errors.Is(err, orderevents.ErrUndefinedStatus):
		msgLog.Warn("skipped event with unknown status")

	case entities.IsBusinessOutcome(err):
		// события могут прийти не по порядку или после отмены клиентом
		msgLog.Warn("event rejected", logger.NewField("error", err))

	default:
		msgLog.Error("failed to process event", logger.NewField("error", err))
	}
	return false
}
