// internal/domain/payment/mpesa.go
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// MpesaClient talks to the Safaricom Daraja API. Every call is bounded by
// the configured timeout so a slow gateway can never hang a checkout.
type MpesaClient struct {
	config     *config.Config
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Logger
}

// NewMpesaClient creates a Daraja API client
func NewMpesaClient(cfg *config.Config, logger *logrus.Logger) *MpesaClient {
	return &MpesaClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Mpesa.Timeout,
		},
		baseURL: cfg.GetMpesaBaseURL(),
		logger:  logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// STKPushRequest is the Daraja STK push payload
type STKPushRequest struct {
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

// STKPushResponse is the Daraja acknowledgment for an STK push
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// getAccessToken fetches an OAuth token from Daraja
func (m *MpesaClient) getAccessToken(ctx context.Context) (string, error) {
	url := m.baseURL + "/oauth/v1/generate?grant_type=client_credentials"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(m.config.Mpesa.ConsumerKey, m.config.Mpesa.ConsumerSecret)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request returned status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	return token.AccessToken, nil
}

// InitiateSTKPush sends a payment prompt to the customer's phone. A non-nil
// error means the gateway did not acknowledge the request and nothing may
// be persisted for the order.
func (m *MpesaClient) InitiateSTKPush(ctx context.Context, phone string, amountCents int64, reference, description string) (*STKPushResponse, error) {
	accessToken, err := m.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("mpesa auth failed: %w", err)
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(m.config.Mpesa.Shortcode + m.config.Mpesa.Passkey + timestamp))

	// Daraja takes whole shillings; cents round up so we never undercharge
	amount := (amountCents + 99) / 100

	payload := STKPushRequest{
		BusinessShortCode: m.config.Mpesa.Shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phone,
		PartyB:            m.config.Mpesa.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       m.config.Mpesa.CallbackURL,
		AccountReference:  reference,
		TransactionDesc:   description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stk push payload: %w", err)
	}

	url := m.baseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build stk push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stk push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stk push returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var pushResp STKPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, fmt.Errorf("failed to decode stk push response: %w", err)
	}

	if pushResp.ResponseCode != "0" {
		return nil, fmt.Errorf("stk push rejected: %s", pushResp.ResponseDescription)
	}
	if pushResp.MerchantRequestID == "" || pushResp.CheckoutRequestID == "" {
		return nil, fmt.Errorf("stk push response missing request identifiers")
	}

	m.logger.WithFields(logrus.Fields{
		"merchant_request_id": pushResp.MerchantRequestID,
		"checkout_request_id": pushResp.CheckoutRequestID,
		"reference":           reference,
	}).Info("STK push accepted by gateway")

	return &pushResp, nil
}

// MpesaInitiator implements Initiator for M-Pesa STK push payments
type MpesaInitiator struct {
	client *MpesaClient
}

// NewMpesaInitiator creates an M-Pesa payment initiator
func NewMpesaInitiator(client *MpesaClient) *MpesaInitiator {
	return &MpesaInitiator{client: client}
}

// Method returns the payment method this initiator serves
func (m *MpesaInitiator) Method() Method {
	return MethodMpesa
}

// Initiate sends the STK push and maps the acknowledgment to an Outcome
func (m *MpesaInitiator) Initiate(ctx context.Context, draft *Draft) (*Outcome, error) {
	if draft.PhoneNumber == "" {
		return nil, ErrInvalidPhoneNumber
	}

	resp, err := m.client.InitiateSTKPush(ctx, draft.PhoneNumber, draft.Amount, draft.Reference, draft.Description)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Mode:              ModeAsyncPush,
		MerchantRequestID: resp.MerchantRequestID,
		CheckoutRequestID: resp.CheckoutRequestID,
		CustomerMessage:   resp.CustomerMessage,
	}, nil
}
