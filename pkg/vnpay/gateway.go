// Package vnpay implements the VNPay IPG signing protocol: a canonical,
// byte-order sorted, unencoded parameter string signed with HMAC-SHA512.
// The same canonical form authenticates outbound redirect URLs and inbound
// callbacks, so both directions share one signing routine.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Protocol field names round-tripped with the gateway
const (
	ParamVersion        = "vnp_Version"
	ParamCommand        = "vnp_Command"
	ParamTmnCode        = "vnp_TmnCode"
	ParamLocale         = "vnp_Locale"
	ParamCurrCode       = "vnp_CurrCode"
	ParamTxnRef         = "vnp_TxnRef"
	ParamOrderInfo      = "vnp_OrderInfo"
	ParamOrderType      = "vnp_OrderType"
	ParamAmount         = "vnp_Amount"
	ParamReturnURL      = "vnp_ReturnUrl"
	ParamIPAddr         = "vnp_IpAddr"
	ParamCreateDate     = "vnp_CreateDate"
	ParamResponseCode   = "vnp_ResponseCode"
	ParamTransactionNo  = "vnp_TransactionNo"
	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

// Fixed protocol values
const (
	protocolVersion = "2.1.0"
	commandPay      = "pay"
	currencyCode    = "VND"

	// ResponseCodeSuccess is the gateway's literal success code
	ResponseCodeSuccess = "00"

	createDateLayout = "20060102150405" // yyyyMMddHHmmss, UTC
)

// Verification errors. A verification error means "we could not establish
// what the gateway said", which is never the same thing as a failed payment.
var (
	ErrMissingSignature  = errors.New("vnpay: callback has no secure hash")
	ErrSignatureMismatch = errors.New("vnpay: secure hash does not match")
	ErrMalformedCallback = errors.New("vnpay: malformed callback parameters")
)

// Config holds the merchant credentials and endpoints
type Config struct {
	TmnCode    string // Merchant terminal code
	HashSecret string // Shared HMAC key, never sent on the wire
	BaseURL    string // Gateway payment page
	ReturnURL  string // Where the gateway redirects the browser
	Locale     string // vn or en
	OrderType  string // Gateway order category
}

// Gateway builds signed payment URLs and verifies signed callbacks
type Gateway struct {
	cfg Config
	now func() time.Time
}

// New creates a gateway adapter
func New(cfg Config) *Gateway {
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	if cfg.OrderType == "" {
		cfg.OrderType = "other"
	}
	return &Gateway{cfg: cfg, now: time.Now}
}

// Order describes one outbound payment attempt. TxnRef must be unique per
// attempt; it is the correlation key the gateway echoes back.
type Order struct {
	TxnRef    string
	OrderInfo string
	Amount    float64 // Decimal amount; transmitted multiplied by 100
	ClientIP  string
}

// BuildPaymentURL assembles the canonical parameter set, signs it and
// returns the browser-navigable redirect URL.
func (g *Gateway) BuildPaymentURL(order Order) (string, error) {
	if g.cfg.TmnCode == "" || g.cfg.HashSecret == "" {
		return "", errors.New("vnpay: gateway credentials not configured")
	}
	if order.TxnRef == "" {
		return "", errors.New("vnpay: transaction reference is required")
	}
	if order.Amount <= 0 {
		return "", fmt.Errorf("vnpay: invalid amount %v", order.Amount)
	}

	params := map[string]string{
		ParamVersion:    protocolVersion,
		ParamCommand:    commandPay,
		ParamTmnCode:    g.cfg.TmnCode,
		ParamLocale:     g.cfg.Locale,
		ParamCurrCode:   currencyCode,
		ParamTxnRef:     order.TxnRef,
		ParamOrderInfo:  order.OrderInfo,
		ParamOrderType:  g.cfg.OrderType,
		ParamAmount:     formatAmount(order.Amount),
		ParamReturnURL:  g.cfg.ReturnURL,
		ParamIPAddr:     order.ClientIP,
		ParamCreateDate: g.now().UTC().Format(createDateLayout),
	}

	signature := g.sign(canonicalize(params))
	params[ParamSecureHash] = signature

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	return g.cfg.BaseURL + "?" + values.Encode(), nil
}

// CallbackResult is the verified outcome of an inbound gateway callback
type CallbackResult struct {
	TxnRef        string            // Correlation key back to the order
	ResponseCode  string            // Raw gateway code
	TransactionNo string            // Gateway-side transaction number
	Amount        float64           // Decimal amount echoed by the gateway
	Success       bool              // Signature valid AND response code "00"
	Params        map[string]string // Verified parameter set, hash removed
}

// VerifyCallback authenticates an inbound parameter set. The secure hash is
// stripped, the remainder re-canonicalized and re-signed, and the digests
// compared in constant time. A valid signature with a non-success response
// code yields Success=false with a nil error: the gateway spoke, and it said
// no.
func (g *Gateway) VerifyCallback(params map[string]string) (*CallbackResult, error) {
	received, ok := params[ParamSecureHash]
	if !ok || received == "" {
		return nil, ErrMissingSignature
	}

	signed := make(map[string]string, len(params))
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		signed[k] = v
	}

	expected := g.sign(canonicalize(signed))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return nil, ErrSignatureMismatch
	}

	result := &CallbackResult{
		TxnRef:        signed[ParamTxnRef],
		ResponseCode:  signed[ParamResponseCode],
		TransactionNo: signed[ParamTransactionNo],
		Params:        signed,
	}
	if result.TxnRef == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedCallback, ParamTxnRef)
	}

	if raw, ok := signed[ParamAmount]; ok {
		minor, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad %s %q", ErrMalformedCallback, ParamAmount, raw)
		}
		result.Amount = float64(minor) / 100
	}

	result.Success = result.ResponseCode == ResponseCodeSuccess

	return result, nil
}

// canonicalize sorts keys bytewise ascending and joins k=v pairs with '&',
// with no URL-encoding. This exact byte string is what gets signed.
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// sign computes the lowercase hex HMAC-SHA512 digest of data
func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// formatAmount converts a decimal amount to the gateway's minor-unit
// convention: the amount multiplied by 100 as a plain integer string.
func formatAmount(amount float64) string {
	return strconv.FormatInt(int64(math.Round(amount*100)), 10)
}
