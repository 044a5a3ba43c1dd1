package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	RoutingKeyAppointmentBooked = "appointment.booked"
	mimeApplicationJSON         = "application/json"
)

// AppointmentBookedEvent is published once a booking transaction has committed.
// Downstream reminder senders key off ReminderMethod.
type AppointmentBookedEvent struct {
	EventID        string    `json:"event_id"`
	SlotID         string    `json:"slot_id"`
	PatientID      string    `json:"patient_id"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	PatientName    string    `json:"patient_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ReminderMethod string    `json:"reminder_method"`
	BookedAt       time.Time `json:"booked_at"`
}

type BookingEventPublisher interface {
	PublishAppointmentBooked(ctx context.Context, event *AppointmentBookedEvent) error
	Close() error
}

// rabbitMQEventPublisher publishes persistent JSON messages to a durable topic exchange
// and waits for the broker's confirm.
type rabbitMQEventPublisher struct {
	ch       *amqp.Channel
	exchange string
	log      *logrus.Logger
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchange string, log *logrus.Logger) (BookingEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	return &rabbitMQEventPublisher{
		ch:       ch,
		exchange: exchange,
		log:      log,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

func (p *rabbitMQEventPublisher) PublishAppointmentBooked(ctx context.Context, event *AppointmentBookedEvent) error {
	msg, err := newAppointmentBookedPublishing(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyAppointmentBooked, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyAppointmentBooked, err)
	}

	select {
	case confirmed := <-p.confirms:
		if !confirmed.Ack {
			return fmt.Errorf("publish %s: message not confirmed", RoutingKeyAppointmentBooked)
		}
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", RoutingKeyAppointmentBooked, ctx.Err())
	}

	p.log.Debugf("Published %s for slot %s", RoutingKeyAppointmentBooked, event.SlotID)
	return nil
}

func (p *rabbitMQEventPublisher) Close() error {
	return p.ch.Close()
}

func newAppointmentBookedPublishing(event *AppointmentBookedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s: %w", RoutingKeyAppointmentBooked, err)
	}

	return amqp.Publishing{
		ContentType:  mimeApplicationJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.BookedAt,
		Type:         RoutingKeyAppointmentBooked,
		Body:         body,
	}, nil
}

type noopEventPublisher struct {
	log *logrus.Logger
}

// NewNoopEventPublisher is used when RabbitMQ is disabled.
func NewNoopEventPublisher(log *logrus.Logger) BookingEventPublisher {
	return &noopEventPublisher{log: log}
}

func (p *noopEventPublisher) PublishAppointmentBooked(ctx context.Context, event *AppointmentBookedEvent) error {
	p.log.Debugf("Event publishing disabled, dropping %s for slot %s", RoutingKeyAppointmentBooked, event.SlotID)
	return nil
}

func (p *noopEventPublisher) Close() error {
	return nil
}
