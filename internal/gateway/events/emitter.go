package events

import (
	"context"
	"encoding/json"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

// KafkaEmitter отправляет уведомления и аудит в Kafka. Отправка не блокирует
// бизнес-операцию: сообщение, которое не удалось закодировать или поставить в буфер,
// теряется с записью в лог и метрику продюсера.
type KafkaEmitter struct {
	log                handlerLogger
	sender             sender
	notificationsTopic string
	auditTopic         string
}

func NewKafkaEmitter(log handlerLogger, sender sender, notificationsTopic, auditTopic string) *KafkaEmitter {
	return &KafkaEmitter{
		log:                log,
		sender:             sender,
		notificationsTopic: notificationsTopic,
		auditTopic:         auditTopic,
	}
}

func (e *KafkaEmitter) Notify(_ context.Context, notification entities.Notification) {
	e.send(e.notificationsTopic, partitionKey(notification.OrderID, notification.CourierID), notification)
}

func (e *KafkaEmitter) Audit(_ context.Context, event entities.AuditEvent) {
	e.send(e.auditTopic, partitionKey(event.OrderID, event.CourierID), event)
}

func (e *KafkaEmitter) send(topic, key string, payload any) {
	value, err := json.Marshal(payload)
	if err != nil {
		e.log.Error("encode event",
			logger.NewField("topic", topic),
			logger.NewField("error", err),
		)
		return
	}
	e.sender.Send(topic, key, value)
}

// partitionKey - события одного заказа попадают в одну партицию и читаются по порядку.
func partitionKey(orderID, courierID string) string {
	if orderID != "" {
		return orderID
	}
	return courierID
}

// LogEmitter пишет события в лог, когда Kafka выключена.
type LogEmitter struct {
	log handlerLogger
}

func NewLogEmitter(log handlerLogger) *LogEmitter {
	return &LogEmitter{log: log}
}

func (e *LogEmitter) Notify(_ context.Context, n entities.Notification) {
	e.log.Info("notification",
		logger.NewField("type", n.Type),
		logger.NewField("order_id", n.OrderID),
		logger.NewField("courier_id", n.CourierID),
		logger.NewField("customer_id", n.CustomerID),
		logger.NewField("attributes", n.Attributes),
	)
}

func (e *LogEmitter) Audit(_ context.Context, event entities.AuditEvent) {
	e.log.Info("audit",
		logger.NewField("actor", event.Actor),
		logger.NewField("action", event.Action),
		logger.NewField("order_id", event.OrderID),
		logger.NewField("courier_id", event.CourierID),
		logger.NewField("detail", event.Detail),
	)
}
