package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mailer submits one transactional message to the external provider.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// HTTPMailer talks to a JSON mail API. The provider call carries its own
// timeout; nothing upstream ever waits on it.
type HTTPMailer struct {
	URL    string
	APIKey string
	From   string
	HTTP   *http.Client
}

type sendReq struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *HTTPMailer) Send(ctx context.Context, to, subject, html string) error {
	hc := m.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}

	body, err := json.Marshal(sendReq{From: m.From, To: to, Subject: subject, HTML: html})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.APIKey)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail provider rejected: %s", resp.Status)
	}
	return nil
}
