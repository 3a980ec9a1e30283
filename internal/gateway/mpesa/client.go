// Package mpesa is a client for the Safaricom Daraja API: client-credential
// OAuth and Lipa Na M-Pesa Online (STK push) requests.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"retailshop/internal/config"
)

const (
	tokenPath = "/oauth/v1/generate?grant_type=client_credentials"
	pushPath  = "/mpesa/stkpush/v1/processrequest"

	transactionType = "CustomerPayBillOnline"
	maxDescLen      = 13

	// tokens are refreshed this long before the provider expires them
	tokenSlack = time.Minute
)

var nairobi = time.FixedZone("EAT", 3*60*60)

type PushRequest struct {
	PhoneNumber      string
	Amount           int64
	AccountReference string
	Description      string
}

type PushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// APIError is returned for any non-2xx reply or a push the provider did not
// accept.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mpesa: status %d code %s: %s", e.StatusCode, e.Code, e.Message)
}

type stkPushBody struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type Client struct {
	cfg  config.MpesaConfig
	http *http.Client
	now  func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewClient(cfg config.MpesaConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, now: time.Now}
}

// Password is base64(shortcode + passkey + timestamp) as Daraja expects.
func Password(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}

// Timestamp formats t as yyyyMMddHHmmss in Nairobi time.
func Timestamp(t time.Time) string {
	return t.In(nairobi).Format("20060102150405")
}

// Push sends an STK push prompt to the customer's phone. A nil error means
// the provider accepted the request; the payment outcome arrives later on
// the callback URL.
func (c *Client) Push(ctx context.Context, req PushRequest) (PushResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return PushResponse{}, err
	}

	timestamp := Timestamp(c.now())
	desc := req.Description
	if len(desc) > maxDescLen {
		desc = desc[:maxDescLen]
	}

	body := stkPushBody{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            req.Amount,
		PartyA:            req.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   desc,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return PushResponse{}, fmt.Errorf("mpesa: failed to encode push: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+pushPath, bytes.NewReader(payload))
	if err != nil {
		return PushResponse{}, fmt.Errorf("mpesa: failed to build push: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	var resp PushResponse
	if err := c.do(httpReq, &resp); err != nil {
		return PushResponse{}, err
	}

	if resp.ResponseCode != "0" {
		return resp, &APIError{StatusCode: http.StatusOK, Code: resp.ResponseCode, Message: resp.ResponseDescription}
	}
	return resp, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("mpesa: failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "empty access token"}
	}

	ttl := time.Hour
	if seconds, err := strconv.Atoi(tok.ExpiresIn); err == nil && seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}

	c.token = tok.AccessToken
	c.expires = c.now().Add(ttl - tokenSlack)
	return c.token, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mpesa: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("mpesa: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.ErrorCode != "" {
			apiErr.Code = e.ErrorCode
			apiErr.Message = e.ErrorMessage
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("mpesa: failed to decode response: %w", err)
	}
	return nil
}
