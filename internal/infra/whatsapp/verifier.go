package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BruksfildServices01/booking-flow/internal/domain/booking"
	"github.com/BruksfildServices01/booking-flow/internal/validators"
)

// HTTPVerifier asks a verification endpoint whether a number has a
// WhatsApp account.
//
//	POST <url>  {"phone":"5511987654321"}
//	200         {"exists":true}
type HTTPVerifier struct {
	url    string
	token  string
	client *http.Client
}

func NewHTTPVerifier(url, token string, client *http.Client) *HTTPVerifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPVerifier{url: url, token: token, client: client}
}

type verifyRequest struct {
	Phone string `json:"phone"`
}

type verifyResponse struct {
	Exists bool `json:"exists"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, phone string) error {
	body, err := json.Marshal(verifyRequest{Phone: phone})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp verify: status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("whatsapp verify: %w", err)
	}
	if !out.Exists {
		return booking.ErrInvalidPhone
	}
	return nil
}

// LocalVerifier accepts any well-formed Brazilian mobile number. Used when
// no verification endpoint is configured.
type LocalVerifier struct{}

func (LocalVerifier) Verify(_ context.Context, phone string) error {
	if !validators.IsWhatsAppNumber(validators.NormalizePhone(phone)) {
		return booking.ErrInvalidPhone
	}
	return nil
}

// New picks the HTTP verifier when url is set.
func New(url, token string) booking.PhoneVerifier {
	if url == "" {
		return LocalVerifier{}
	}
	return NewHTTPVerifier(url, token, nil)
}

var (
	_ booking.PhoneVerifier = (*HTTPVerifier)(nil)
	_ booking.PhoneVerifier = LocalVerifier{}
)
