package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kaamsetu/kaamsetu-api/config"
	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
	"github.com/kaamsetu/kaamsetu-api/pkg/notify"
)

// The worker drains the notification queue and fans events out to
// their Redis room channel. Events carrying an email target are also
// delivered through Mailgun when it is configured.
func main() {
	cfg := config.Load()
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQNotifyQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQNotifyQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	var mailer *notify.Mailer
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.MailgunSender != "" {
		mailer = notify.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		log.Println("Mailgun not configured; email channel disabled")
	}

	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev notify.Event
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}

			// Room channel first. Realtime delivery is lossy: a failed
			// publish is logged and the message is still acked after
			// the email attempt.
			c, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := notify.PublishToRoom(c, rdb, ev.Room, msg.Body); err != nil {
				log.Printf("room publish %s: %v", ev.Room, err)
			}
			cancel()

			if mailer != nil && ev.Email != "" {
				c, cancel := context.WithTimeout(ctx, 15*time.Second)
				if err := mailer.Send(c, ev.Email, ev.Title, ev.Body); err != nil {
					cancel()
					log.Printf("email send %s: %v", ev.Email, err)
					_ = msg.Nack(false, true) // requeue for retry
					continue
				}
				cancel()
			}

			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("notify worker consuming %q", cfg.RabbitMQNotifyQueue)
	<-stop
	log.Println("shutting down notify worker")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Println("drain timeout")
	}
}
