package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/patel-jhanvi/amrap-gym/internal/logger"
	"github.com/patel-jhanvi/amrap-gym/internal/metrics"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"
	maxTries  = 3
	popWait   = 2 * time.Second
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// SendFunc delivers one job. The default delivers over SMTP.
type SendFunc func(job EmailJob) error

// Service queues membership notifications in Redis and delivers them from
// a single worker loop.
type Service struct {
	redis      *redis.Client
	send       SendFunc
	now        func() time.Time
	retryDelay time.Duration
	from       string
	fromName   string
	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	s := NewWithClient(client, fromEmail, fromName, nil)
	s.smtpHost = smtpHost
	s.smtpPort = smtpPort
	s.smtpUser = smtpUser
	s.smtpPass = smtpPass
	return s
}

// NewWithClient builds a Service on an existing client. A nil send uses SMTP.
func NewWithClient(client *redis.Client, fromEmail, fromName string, send SendFunc) *Service {
	s := &Service{
		redis:      client,
		now:        time.Now,
		retryDelay: 5 * time.Second,
		from:       fromEmail,
		fromName:   fromName,
	}
	s.send = send
	if s.send == nil {
		s.send = s.sendSMTP
	}
	return s
}

func (s *Service) Send(ctx context.Context, to, name, kind, subject, body string) error {
	job := EmailJob{
		To:      to,
		Name:    name,
		Kind:    kind,
		Subject: subject,
		Body:    body,
		Created: s.now(),
	}

	if err := s.push(ctx, queueKey, job); err != nil {
		logger.WithError(err).Error("failed to queue email", "to", to, "kind", kind)
		metrics.RecordNotification(kind, "queue_failed")
		return err
	}

	metrics.RecordNotification(kind, "queued")
	logger.Info("email queued", "to", to, "kind", kind)
	return nil
}

func (s *Service) push(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}
	return s.redis.LPush(ctx, key, string(data)).Err()
}

// Start runs the delivery loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			if err := s.processNext(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Warn("email queue read failed")
				s.sleep(ctx, s.retryDelay)
			}
		}
	}
}

// processNext delivers at most one job. An empty queue is not an error.
func (s *Service) processNext(ctx context.Context) error {
	result, err := s.redis.BRPop(ctx, popWait, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.WithError(err).Error("dropping malformed email job")
		return nil
	}

	job.Tries++
	if err := s.send(job); err != nil {
		logger.WithError(err).Error("failed to send email", "to", job.To, "attempt", job.Tries)

		if job.Tries < maxTries {
			s.sleep(ctx, s.retryDelay)
			if err := s.push(context.Background(), queueKey, job); err != nil {
				return err
			}
			metrics.RecordNotification(job.Kind, "retried")
			return nil
		}

		metrics.RecordNotification(job.Kind, "failed")
		return s.saveFailed(job, err)
	}

	metrics.RecordNotification(job.Kind, "sent")
	logger.Info("email sent", "to", job.To, "kind", job.Kind)
	return nil
}

func (s *Service) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Service) sendSMTP(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, cause error) error {
	failed := map[string]interface{}{
		"job":   job,
		"error": cause.Error(),
		"time":  s.now(),
	}
	if err := s.push(context.Background(), failedKey, failed); err != nil {
		return err
	}
	logger.Error("email moved to failed queue", "to", job.To, "tries", job.Tries)
	return nil
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0
	}
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) MembershipStarted(ctx context.Context, to, name, gymName string, joined time.Time) error {
	subject := "Welcome to " + gymName
	body := fmt.Sprintf(`Hi %s,

Your membership at %s is active as of %s.

See you at the gym!

- AMRAP Gym`, name, gymName, joined.Format("Jan 2, 2006"))

	return s.Send(ctx, to, name, "membership_started", subject, body)
}

func (s *Service) MembershipEnded(ctx context.Context, to, name, gymName string) error {
	subject := "Membership ended - " + gymName
	body := fmt.Sprintf(`Hi %s,

Your membership at %s has been ended.

- AMRAP Gym`, name, gymName)

	return s.Send(ctx, to, name, "membership_ended", subject, body)
}
