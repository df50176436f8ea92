package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/annoq/jobqueue/job"
	"github.com/annoq/jobqueue/retry"
)

// URLValidator performs the SSRF check against a webhook target. It is
// an external collaborator: resolving hostnames and classifying
// private/reserved address space is not this package's concern.
// Implementations must return an error carrying the "ssrf_blocked"
// code (see retry.HandlerError) when a URL is rejected.
type URLValidator interface {
	ValidateWebhookURL(url string) error
}

// Payload is the JSON body POSTed to a job's webhookUrl on terminal
// transition.
type Payload struct {
	JobID    job.ID         `json:"jobId"`
	Type     job.Type       `json:"type"`
	Status   job.Status     `json:"status"`
	Result   any            `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration *int64         `json:"duration,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Deliverer sends terminal-job notifications over HTTP with
// at-most-twice delivery semantics: one attempt, then one retry after
// a fixed 1-second delay.
type Deliverer struct {
	Client    *http.Client
	Validator URLValidator
	UserAgent string
}

// NewDeliverer builds a Deliverer whose HTTP client enforces timeout as
// a connect+read deadline on every attempt.
func NewDeliverer(validator URLValidator, timeout time.Duration, userAgent string) *Deliverer {
	return &Deliverer{
		Client:    &http.Client{Timeout: timeout},
		Validator: validator,
		UserAgent: userAgent,
	}
}

// Send validates url, builds rec's payload, and delivers it. A
// validation failure is returned unretried: the URL itself is
// considered hostile, not merely unreachable.
func (d *Deliverer) Send(ctx context.Context, url string, rec *job.Record) error {
	if err := d.Validator.ValidateWebhookURL(url); err != nil {
		return err
	}

	body, err := json.Marshal(buildPayload(rec))
	if err != nil {
		return err
	}

	policy := retry.Policy{
		MaxRetries: 1,
		BaseDelay:  time.Second,
		MaxDelay:   time.Second,
		RetryOn:    func(error) bool { return true },
	}
	return retry.Do(ctx, policy, func(ctx context.Context) error {
		return d.attempt(ctx, url, body)
	})
}

func (d *Deliverer) attempt(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.HandlerError{
			Err:    fmt.Errorf("webhook: unexpected status %d", resp.StatusCode),
			Status: resp.StatusCode,
		}
	}
	return nil
}

func buildPayload(rec *job.Record) Payload {
	p := Payload{
		JobID:    rec.ID,
		Type:     rec.Type,
		Status:   rec.Status,
		Result:   rec.Result,
		Error:    rec.Error,
		Metadata: rec.Options.Metadata,
	}
	if rec.StartedAt != nil && rec.CompletedAt != nil {
		ms := rec.CompletedAt.Sub(*rec.StartedAt).Milliseconds()
		p.Duration = &ms
	}
	return p
}
