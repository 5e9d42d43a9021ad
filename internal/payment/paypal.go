package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Doer abstracts HTTP execution so callers can inject retry and
// circuit-breaker behaviour around outbound gateway calls.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// PayPal implements Provider against the PayPal REST payments API using the
// create-approve-execute flow.
type PayPal struct {
	ClientID  string
	Secret    string
	BaseURL   string
	Sandbox   bool
	HTTP      *http.Client
	Transport Doer
}

func (p PayPal) host() string {
	host := strings.TrimSpace(p.BaseURL)
	if host == "" {
		if p.Sandbox {
			return "https://api.sandbox.paypal.com"
		}
		return "https://api.paypal.com"
	}
	return strings.TrimRight(host, "/")
}

func (p PayPal) doer() Doer {
	if p.Transport != nil {
		return p.Transport
	}
	client := p.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return plainDoer{client: client}
}

type plainDoer struct {
	client *http.Client
}

func (d plainDoer) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return d.client.Do(req.WithContext(ctx))
}

func (p PayPal) token(ctx context.Context) (string, error) {
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host()+"/v1/oauth2/token", body)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.ClientID, p.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.doer().Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("paypal: token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal: token request failed with status %d", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("paypal: decode token: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("paypal: empty access token")
	}
	return out.AccessToken, nil
}

// Authorize creates a payment and returns the approval redirect the buyer
// must visit.
func (p PayPal) Authorize(ctx context.Context, req AuthorizeRequest) (Authorization, error) {
	if strings.TrimSpace(req.OrderRef) == "" {
		return Authorization{}, errors.New("paypal: order reference is required")
	}
	tok, err := p.token(ctx)
	if err != nil {
		return Authorization{}, err
	}

	payload := map[string]any{
		"intent": "sale",
		"payer":  map[string]any{"payment_method": "paypal"},
		"transactions": []map[string]any{{
			"amount": map[string]string{
				"total":    req.Amount.StringFixed(2),
				"currency": req.Currency,
			},
			"description":    req.Description,
			"invoice_number": req.OrderRef,
		}},
		"redirect_urls": map[string]string{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL,
		},
	}
	var created struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := p.post(ctx, tok, "/v1/payments/payment", payload, &created); err != nil {
		return Authorization{}, err
	}
	if created.ID == "" {
		return Authorization{}, errors.New("paypal: create returned no payment id")
	}
	auth := Authorization{PaymentID: created.ID}
	for _, link := range created.Links {
		if link.Rel == "approval_url" {
			auth.ApprovalURL = link.Href
			break
		}
	}
	if auth.ApprovalURL == "" {
		return Authorization{}, errors.New("paypal: create returned no approval url")
	}
	return auth, nil
}

// Execute settles an approved payment.
func (p PayPal) Execute(ctx context.Context, paymentID, payerID string) (Capture, error) {
	if paymentID == "" || payerID == "" {
		return Capture{}, errors.New("paypal: payment id and payer id are required")
	}
	tok, err := p.token(ctx)
	if err != nil {
		return Capture{}, err
	}
	var executed struct {
		ID           string `json:"id"`
		State        string `json:"state"`
		Transactions []struct {
			RelatedResources []struct {
				Sale struct {
					ID string `json:"id"`
				} `json:"sale"`
			} `json:"related_resources"`
		} `json:"transactions"`
	}
	path := fmt.Sprintf("/v1/payments/payment/%s/execute", url.PathEscape(paymentID))
	if err := p.post(ctx, tok, path, map[string]string{"payer_id": payerID}, &executed); err != nil {
		return Capture{}, err
	}
	if !strings.EqualFold(executed.State, "approved") {
		return Capture{}, fmt.Errorf("paypal: payment not approved, state %q", executed.State)
	}
	capture := Capture{TransactionID: executed.ID, PayerID: payerID, State: executed.State}
	for _, tx := range executed.Transactions {
		for _, res := range tx.RelatedResources {
			if res.Sale.ID != "" {
				capture.TransactionID = res.Sale.ID
			}
		}
	}
	return capture, nil
}

func (p PayPal) post(ctx context.Context, token, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("paypal: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host()+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.doer().Do(ctx, req)
	if err != nil {
		return fmt.Errorf("paypal: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal: %s failed with status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("paypal: decode %s: %w", path, err)
	}
	return nil
}
