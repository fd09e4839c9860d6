// Package email renders templated HTML mail and delivers it over SMTP from a
// background queue.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"iprofit/internal/logger"
	"iprofit/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrUnknownTemplate = errors.New("unknown email template")
	ErrQueueFull       = errors.New("email queue is full")
	ErrClosed          = errors.New("email service is closed")
)

// Message is one outbound email.
type Message struct {
	To       string
	Template string
	Data     map[string]interface{}
}

// Service sends templated emails.
type Service interface {
	// Send renders and delivers msg synchronously.
	Send(ctx context.Context, msg Message) error
	// Enqueue hands msg to the background worker without blocking.
	Enqueue(msg Message) error
	// Close stops accepting messages and drains the queue.
	Close()
}

// Transport delivers a rendered message.
type Transport interface {
	Deliver(from string, to []string, raw []byte) error
}

// Config holds email delivery settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Platform  string
	PerSecond float64
	Burst     int
	QueueSize int
}

type service struct {
	transport Transport
	templates map[string]compiled
	limiter   *rate.Limiter
	queue     chan Message
	cfg       Config
	log       *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewService builds the email service and starts its worker. When no SMTP host
// is configured messages are logged and dropped.
func NewService(cfg Config, transport Transport, log *zap.Logger) (Service, error) {
	log = logger.OrNop(log)
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Platform == "" {
		cfg.Platform = "iProfit"
	}
	if transport == nil {
		if cfg.Host == "" {
			log.Warn("SMTP_HOST not set, emails will be discarded")
			transport = noopTransport{log: log}
		} else {
			transport = &smtpTransport{
				addr: cfg.Host + ":" + strconv.Itoa(cfg.Port),
				auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
			}
		}
	}

	tpls, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &service{
		transport: transport,
		templates: tpls,
		limiter:   rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst),
		queue:     make(chan Message, cfg.QueueSize),
		cfg:       cfg,
		log:       log,
	}
	s.wg.Add(1)
	go s.worker()
	return s, nil
}

func (s *service) Send(ctx context.Context, msg Message) error {
	raw, err := s.render(msg)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(msg.Template, "error").Inc()
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.EmailsSent.WithLabelValues(msg.Template, "error").Inc()
		return fmt.Errorf("email throttle: %w", err)
	}
	if err := s.transport.Deliver(s.cfg.From, []string{msg.To}, raw); err != nil {
		metrics.EmailsSent.WithLabelValues(msg.Template, "error").Inc()
		return fmt.Errorf("failed to send %s email: %w", msg.Template, err)
	}
	metrics.EmailsSent.WithLabelValues(msg.Template, "sent").Inc()
	return nil
}

func (s *service) Enqueue(msg Message) error {
	if _, ok := s.templates[msg.Template]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, msg.Template)
	}
	if msg.To == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.queue <- msg:
		return nil
	default:
		metrics.EmailsSent.WithLabelValues(msg.Template, "dropped").Inc()
		s.log.Warn("email queue full, dropping message",
			zap.String("template", msg.Template),
			zap.String("to", msg.To))
		return ErrQueueFull
	}
}

func (s *service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *service) worker() {
	defer s.wg.Done()
	for msg := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.Send(ctx, msg); err != nil {
			s.log.Error("failed to deliver email",
				zap.String("template", msg.Template),
				zap.String("to", msg.To),
				zap.Error(err))
		}
		cancel()
	}
}

func (s *service) render(msg Message) ([]byte, error) {
	tpl, ok := s.templates[msg.Template]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, msg.Template)
	}
	data := map[string]interface{}{"Platform": s.cfg.Platform, "Name": "there"}
	for k, v := range msg.Data {
		data[k] = v
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render subject %s: %w", msg.Template, err)
	}
	if err := tpl.body.ExecuteTemplate(&body, "layout", data); err != nil {
		return nil, fmt.Errorf("render body %s: %w", msg.Template, err)
	}

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&raw, "To: %s\r\n", msg.To)
	fmt.Fprintf(&raw, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", strings.TrimSpace(subject.String())))
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	raw.Write(body.Bytes())
	return raw.Bytes(), nil
}

type smtpTransport struct {
	addr string
	auth smtp.Auth
}

func (t *smtpTransport) Deliver(from string, to []string, raw []byte) error {
	return smtp.SendMail(t.addr, t.auth, from, to, raw)
}

type noopTransport struct {
	log *zap.Logger
}

func (t noopTransport) Deliver(_ string, to []string, _ []byte) error {
	t.log.Debug("email discarded", zap.Strings("to", to))
	return nil
}
