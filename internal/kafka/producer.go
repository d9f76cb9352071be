package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// ReceiptMessage квитанция для сервиса уведомлений
type ReceiptMessage struct {
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// Producer Kafka producer для отправки квитанций
type Producer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// NewProducer создает новый Kafka producer
func NewProducer(brokers []string, topic string, logger *logrus.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Асинхронная отправка для производительности
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
	}

	logger.Infof("Kafka producer initialized for topic: %s", topic)

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// SendReceipt отправляет квитанцию в топик уведомлений
func (p *Producer) SendReceipt(ctx context.Context, recipientEmail, subject, content string) error {
	message := ReceiptMessage{
		RecipientEmail: recipientEmail,
		Subject:        subject,
		Content:        content,
		Timestamp:      time.Now(),
	}

	// Сериализуем сообщение в JSON
	messageBytes, err := json.Marshal(message)
	if err != nil {
		p.logger.Errorf("Failed to marshal Kafka message: %v", err)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Отправляем сообщение в Kafka
	kafkaMessage := kafka.Message{
		Key:   []byte(recipientEmail),
		Value: messageBytes,
		Time:  time.Now(),
	}

	err = p.writer.WriteMessages(ctx, kafkaMessage)
	if err != nil {
		p.logger.Errorf("Failed to send message to Kafka: %v", err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Infof("Sent receipt to Kafka: recipient=%s, subject=%s", recipientEmail, subject)

	return nil
}

// Close закрывает Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		p.logger.Info("Closing Kafka producer")
		return p.writer.Close()
	}
	return nil
}
