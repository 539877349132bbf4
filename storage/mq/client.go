package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/deadpanpulley/alarm-nosnooze/config"
)

var (
	conn   *amqp.Connection
	connMu sync.RWMutex
)

func Init() error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn != nil && !conn.IsClosed() {
		return nil
	}

	c, err := amqp.Dial(config.Cfg.GetRabbitMQURL())
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	conn = c

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open topology channel: %w", err)
	}
	defer ch.Close()

	return declareTopology(ch)
}

// declareTopology 声明闹钟通知用到的交换机和队列
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		"alarm.topic",
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare alarm.topic exchange: %w", err)
	}

	bindings := map[string]string{
		"alarm.fired":     "alarm.fired.*",
		"alarm.dismissed": "alarm.dismissed",
	}

	for queue, routingKey := range bindings {
		if _, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}

		if err := ch.QueueBind(queue, routingKey, "alarm.topic", false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

func Close(ctx context.Context) error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	err := conn.Close()
	conn = nil
	return err
}
