package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *Gateway {
	g := New(Config{
		TmnCode:    "TESTTMN1",
		HashSecret: "test-hash-secret",
		BaseURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://example.com/payment/return",
		Locale:     "vn",
		OrderType:  "other",
	})
	g.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return g
}

func TestBuildPaymentURL(t *testing.T) {
	g := testGateway()

	raw, err := g.BuildPaymentURL(Order{
		TxnRef:    "TICKET123",
		OrderInfo: "Bus ticket TICKET123",
		Amount:    150000,
		ClientIP:  "203.113.131.1",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "2.1.0", q.Get(ParamVersion))
	assert.Equal(t, "pay", q.Get(ParamCommand))
	assert.Equal(t, "TESTTMN1", q.Get(ParamTmnCode))
	assert.Equal(t, "VND", q.Get(ParamCurrCode))
	assert.Equal(t, "TICKET123", q.Get(ParamTxnRef))
	// Amount is the decimal value multiplied by 100, as a plain integer
	assert.Equal(t, "15000000", q.Get(ParamAmount))
	assert.Equal(t, "20250314092653", q.Get(ParamCreateDate))
	assert.Equal(t, "203.113.131.1", q.Get(ParamIPAddr))
	assert.NotEmpty(t, q.Get(ParamSecureHash))

	// The hash must cover the sorted, unencoded parameter string
	params := map[string]string{}
	for k := range q {
		if k == ParamSecureHash {
			continue
		}
		params[k] = q.Get(k)
	}
	mac := hmac.New(sha512.New, []byte("test-hash-secret"))
	mac.Write([]byte(canonicalize(params)))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), q.Get(ParamSecureHash))
}

func TestBuildPaymentURL_Validation(t *testing.T) {
	g := testGateway()

	_, err := g.BuildPaymentURL(Order{OrderInfo: "no ref", Amount: 100})
	assert.Error(t, err)

	_, err = g.BuildPaymentURL(Order{TxnRef: "X", Amount: 0})
	assert.Error(t, err)

	unconfigured := New(Config{})
	_, err = unconfigured.BuildPaymentURL(Order{TxnRef: "X", Amount: 100})
	assert.Error(t, err)
}

// signedCallback builds a callback parameter set carrying a valid signature
func signedCallback(g *Gateway, params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out[ParamSecureHash] = g.sign(canonicalize(params))
	return out
}

func TestVerifyCallback_RoundTrip(t *testing.T) {
	g := testGateway()

	params := signedCallback(g, map[string]string{
		ParamTxnRef:        "TICKET123",
		ParamResponseCode:  "00",
		ParamTransactionNo: "14226112",
		ParamAmount:        "15000000",
		ParamOrderInfo:     "Bus ticket TICKET123",
	})

	result, err := g.VerifyCallback(params)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "TICKET123", result.TxnRef)
	assert.Equal(t, "14226112", result.TransactionNo)
	assert.Equal(t, 150000.0, result.Amount)
}

func TestVerifyCallback_TamperedValueFails(t *testing.T) {
	g := testGateway()

	base := map[string]string{
		ParamTxnRef:       "TICKET123",
		ParamResponseCode: "00",
		ParamAmount:       "15000000",
	}

	for key, mutated := range map[string]string{
		ParamAmount:       "100",       // Tampered amount, success code intact
		ParamTxnRef:       "TICKET999", // Redirected correlation key
		ParamResponseCode: "24",        // Rewritten outcome
	} {
		params := signedCallback(g, base)
		params[key] = mutated

		result, err := g.VerifyCallback(params)
		assert.ErrorIs(t, err, ErrSignatureMismatch, "mutating %s must break the signature", key)
		assert.Nil(t, result)
	}
}

func TestVerifyCallback_GatewayReportedFailure(t *testing.T) {
	g := testGateway()

	// Valid signature, non-success code: a verified "no", not an error
	params := signedCallback(g, map[string]string{
		ParamTxnRef:       "TICKET123",
		ParamResponseCode: "24",
		ParamAmount:       "15000000",
	})

	result, err := g.VerifyCallback(params)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "24", result.ResponseCode)
}

func TestVerifyCallback_MissingSignature(t *testing.T) {
	g := testGateway()

	_, err := g.VerifyCallback(map[string]string{
		ParamTxnRef:       "TICKET123",
		ParamResponseCode: "00",
	})
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifyCallback_IgnoresSecureHashType(t *testing.T) {
	g := testGateway()

	params := signedCallback(g, map[string]string{
		ParamTxnRef:       "TICKET123",
		ParamResponseCode: "00",
	})
	// The hash type field is excluded from signing on both sides
	params[ParamSecureHashType] = "HmacSHA512"

	result, err := g.VerifyCallback(params)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestVerifyCallback_Malformed(t *testing.T) {
	g := testGateway()

	t.Run("missing txn ref", func(t *testing.T) {
		params := signedCallback(g, map[string]string{
			ParamResponseCode: "00",
		})
		_, err := g.VerifyCallback(params)
		assert.ErrorIs(t, err, ErrMalformedCallback)
	})

	t.Run("unparseable amount", func(t *testing.T) {
		params := signedCallback(g, map[string]string{
			ParamTxnRef:       "TICKET123",
			ParamResponseCode: "00",
			ParamAmount:       "abc",
		})
		_, err := g.VerifyCallback(params)
		assert.ErrorIs(t, err, ErrMalformedCallback)
	})
}

func TestCanonicalize(t *testing.T) {
	// Keys sort bytewise ascending; values stay unencoded
	got := canonicalize(map[string]string{
		"vnp_TxnRef":    "T 1",
		"vnp_Amount":    "100",
		"vnp_OrderInfo": "a&b=c",
	})
	assert.Equal(t, "vnp_Amount=100&vnp_OrderInfo=a&b=c&vnp_TxnRef=T 1", got)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{150000, "15000000"},
		{100000, "10000000"},
		{0.01, "1"},
		{99.99, "9999"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, formatAmount(tc.amount))
	}
}
