package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testMpesaConfig() *config.Config {
	return &config.Config{
		Mpesa: config.MpesaConfig{
			ConsumerKey:    "key",
			ConsumerSecret: "secret",
			Shortcode:      "174379",
			Passkey:        "passkey",
			CallbackURL:    "https://example.com/webhooks/mpesa",
			Environment:    "sandbox",
			Timeout:        2 * time.Second,
		},
	}
}

func newTestClient(serverURL string) *MpesaClient {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client := NewMpesaClient(testMpesaConfig(), logger)
	client.baseURL = serverURL
	return client
}

func TestInitiateSTKPushSuccess(t *testing.T) {
	var pushReq STKPushRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "key", user)
			assert.Equal(t, "secret", pass)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&pushReq))
			json.NewEncoder(w).Encode(STKPushResponse{
				MerchantRequestID:   "29115-34620561-1",
				CheckoutRequestID:   "ws_CO_191220191020363925",
				ResponseCode:        "0",
				ResponseDescription: "Success. Request accepted for processing",
				CustomerMessage:     "Success. Request accepted for processing",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.InitiateSTKPush(context.Background(), "254712345678", 116600, "ORD-1-ABC", "Order payment")
	require.NoError(t, err)

	assert.Equal(t, "29115-34620561-1", resp.MerchantRequestID)
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)

	// Cents convert to whole shillings
	assert.Equal(t, int64(1166), pushReq.Amount)
	assert.Equal(t, "254712345678", pushReq.PhoneNumber)
	assert.Equal(t, "ORD-1-ABC", pushReq.AccountReference)
	assert.Equal(t, "CustomerPayBillOnline", pushReq.TransactionType)
	assert.NotEmpty(t, pushReq.Password)
}

func TestInitiateSTKPushGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
		case "/mpesa/stkpush/v1/processrequest":
			json.NewEncoder(w).Encode(STKPushResponse{
				ResponseCode:        "1",
				ResponseDescription: "Invalid PhoneNumber",
			})
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.InitiateSTKPush(context.Background(), "254712345678", 50000, "ORD-2-DEF", "Order payment")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "stk push rejected")
}

func TestInitiateSTKPushMissingRequestIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
		case "/mpesa/stkpush/v1/processrequest":
			// Gateway says yes but returns no identifiers: unusable ack
			json.NewEncoder(w).Encode(STKPushResponse{ResponseCode: "0"})
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.InitiateSTKPush(context.Background(), "254712345678", 50000, "ORD-3-GHI", "Order payment")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing request identifiers")
}

func TestInitiateSTKPushTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
			return
		}
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.InitiateSTKPush(context.Background(), "254712345678", 50000, "ORD-4-JKL", "Order payment")
	assert.Error(t, err)
}

func TestInitiateSTKPushAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.InitiateSTKPush(context.Background(), "254712345678", 50000, "ORD-5-MNO", "Order payment")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mpesa auth failed")
}

func TestMpesaInitiatorRequiresPhone(t *testing.T) {
	initiator := NewMpesaInitiator(newTestClient("http://127.0.0.1:0"))
	_, err := initiator.Initiate(context.Background(), &Draft{Amount: 1000})
	assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
}

func TestCODInitiatorIsImmediate(t *testing.T) {
	outcome, err := NewCODInitiator().Initiate(context.Background(), &Draft{Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, ModeImmediate, outcome.Mode)
	assert.Empty(t, outcome.CheckoutRequestID)
}

// An acknowledged STK push settles asynchronously: the caller must defer
// coupon and loyalty side effects to the confirmation callback.
func TestMpesaInitiatorIsAsyncPush(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			json.NewEncoder(w).Encode(STKPushResponse{
				MerchantRequestID: "29115-34620561-1",
				CheckoutRequestID: "ws_CO_191220191020363925",
				ResponseCode:      "0",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	initiator := NewMpesaInitiator(newTestClient(server.URL))
	outcome, err := initiator.Initiate(context.Background(), &Draft{
		Amount:      116600,
		PhoneNumber: "254712345678",
		Reference:   "ORD-1-ABC",
	})
	require.NoError(t, err)
	assert.Equal(t, ModeAsyncPush, outcome.Mode)
	assert.Equal(t, "ws_CO_191220191020363925", outcome.CheckoutRequestID)
}

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry(NewCODInitiator())

	in, err := registry.Resolve(MethodCOD)
	require.NoError(t, err)
	assert.Equal(t, MethodCOD, in.Method())

	_, err = registry.Resolve(Method("paypal"))
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestStkCallbackParsing(t *testing.T) {
	payload := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 1166.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20191219102115},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`

	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	cb := env.Body.StkCallback
	assert.True(t, cb.Succeeded())
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)
	assert.Equal(t, "NLJ7RT61SV", cb.ReceiptNumber())
	assert.Equal(t, "254712345678", cb.PayerPhone())
	assert.Equal(t, int64(116600), cb.AmountCents())
}

func TestStkCallbackFailure(t *testing.T) {
	payload := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`

	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	cb := env.Body.StkCallback
	assert.False(t, cb.Succeeded())
	assert.Empty(t, cb.ReceiptNumber())
	assert.Equal(t, int64(0), cb.AmountCents())
}
