package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/pkg/config"
	"dispatch/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var producerDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_producer_dropped_total",
		Help: "Messages dropped by the async producer (buffer full or delivery error)",
	},
	[]string{"topic", "reason"},
)

// Producer - асинхронный fire-and-forget продюсер. Send никогда не блокирует вызывающего:
// при переполненном буфере сообщение отбрасывается и учитывается в метрике.
type Producer struct {
	log      logger.Logger
	producer sarama.AsyncProducer
	wg       sync.WaitGroup
}

func NewProducer(ctx context.Context, log logger.Logger, cfg *config.Kafka) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	version, err := sarama.ParseKafkaVersion(cfg.Sarama.Version)
	if err != nil {
		return nil, fmt.Errorf("parse kafka version %q: %w", cfg.Sarama.Version, err)
	}
	saramaConfig.Version = version
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Flush.Frequency = 50 * time.Millisecond
	saramaConfig.ChannelBufferSize = 1024

	brokers := cfg.BrokerList()
	kafkaLog := log.With(
		logger.NewField("component", "kafka-producer"),
		logger.NewField("brokers", brokers),
	)

	if err := pingKafka(ctx, kafkaLog, brokers, saramaConfig); err != nil {
		return nil, fmt.Errorf("kafka connection: %w", err)
	}

	producer, err := sarama.NewAsyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create async producer: %w", err)
	}

	p := &Producer{
		log:      kafkaLog,
		producer: producer,
	}

	p.wg.Add(1)
	go p.drainErrors()

	return p, nil
}

func (p *Producer) Send(topic, key string, value []byte) {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	select {
	case p.producer.Input() <- msg:
	default:
		producerDroppedTotal.WithLabelValues(topic, "buffer_full").Inc()
	}
}

func (p *Producer) drainErrors() {
	defer p.wg.Done()

	for perr := range p.producer.Errors() {
		producerDroppedTotal.WithLabelValues(perr.Msg.Topic, "delivery_error").Inc()
		p.log.Warn("kafka message not delivered",
			logger.NewField("topic", perr.Msg.Topic),
			logger.NewField("error", perr.Err),
		)
	}
}

// Close сбрасывает буфер и ждёт завершения обработки ошибок.
func (p *Producer) Close() error {
	err := p.producer.Close()
	p.wg.Wait()
	return err
}
