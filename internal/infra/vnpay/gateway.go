package vnpay

import (
	"strconv"
	"time"

	"music-payment-service/internal/domain"
)

// Gateway protocol constants. Timestamps on the wire are 14 fixed digits with
// no separators; amounts are transmitted in minor units (VND x 100).
const (
	Version        = "2.1.0"
	CommandPay     = "pay"
	CurrencyVND    = "VND"
	LocaleVN       = "vn"
	OrderTypeOther = "other"

	// ResponseCodeSuccess is the only result code that settles a transaction
	// as completed. All other codes are defined by the gateway's own
	// documentation and are treated uniformly as failure.
	ResponseCodeSuccess = "00"

	TimestampLayout = "20060102150405"

	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
)

// requestTTL is how long a signed payment URL stays valid on the gateway side.
const requestTTL = 24 * time.Hour

// Gateway builds signed redirect URLs and verifies inbound callbacks for a
// VNPay merchant account. All credentials are captured at construction; no
// method reads ambient state.
type Gateway struct {
	tmnCode    string
	hashSecret string
	payURL     string
	returnURL  string
}

func NewGateway(tmnCode, hashSecret, payURL, returnURL string) (*Gateway, error) {
	if tmnCode == "" || hashSecret == "" || payURL == "" || returnURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Gateway{tmnCode: tmnCode, hashSecret: hashSecret, payURL: payURL, returnURL: returnURL}, nil
}

func (g *Gateway) Name() string { return "vnpay" }

// PaymentRequest carries the per-transaction inputs of a redirect URL.
type PaymentRequest struct {
	TxnRef    string
	Amount    int64 // whole VND; converted to minor units on the wire
	OrderInfo string
	ClientIP  string
	CreatedAt time.Time
}

// BuildPaymentURL assembles the gateway parameter set, signs its canonical
// encoding, and returns the redirect URL. The URL query is the canonical
// encoding itself plus the appended signature, so verification of our own
// output always succeeds.
func (g *Gateway) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.TxnRef == "" || req.Amount <= 0 {
		return "", domain.ErrInvalidArgument
	}

	params := Params{
		"vnp_Version":    Version,
		"vnp_Command":    CommandPay,
		"vnp_TmnCode":    g.tmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CreateDate": req.CreatedAt.Format(TimestampLayout),
		"vnp_ExpireDate": req.CreatedAt.Add(requestTTL).Format(TimestampLayout),
		"vnp_CurrCode":   CurrencyVND,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_Locale":     LocaleVN,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  OrderTypeOther,
		"vnp_ReturnUrl":  g.returnURL,
		"vnp_TxnRef":     req.TxnRef,
	}

	query := EncodeParams(params)
	digest := Sign(g.hashSecret, query)
	return g.payURL + "?" + query + "&" + paramSecureHash + "=" + digest, nil
}

// CallbackData is the verified payload of an inbound gateway notification.
type CallbackData struct {
	TxnRef       string
	Amount       int64 // whole VND, converted back from minor units
	ResponseCode string
	BankCode     string
	PayDate      string
}

// Succeeded reports whether the gateway settled the payment successfully.
func (d *CallbackData) Succeeded() bool { return d.ResponseCode == ResponseCodeSuccess }

// VerifyCallback authenticates an inbound parameter set. The signature fields
// are removed before canonical encoding: the signature itself is never part of
// what is signed. Returns ErrSignatureMismatch when the digest does not match;
// the caller must not touch any state in that case.
func (g *Gateway) VerifyCallback(raw Params) (*CallbackData, error) {
	provided := raw[paramSecureHash]
	if provided == "" {
		return nil, domain.ErrSignatureMismatch
	}

	params := make(Params, len(raw))
	for k, v := range raw {
		if k == paramSecureHash || k == paramSecureHashType {
			continue
		}
		params[k] = v
	}

	if !VerifySignature(g.hashSecret, EncodeParams(params), provided) {
		return nil, domain.ErrSignatureMismatch
	}

	data := &CallbackData{
		TxnRef:       params["vnp_TxnRef"],
		ResponseCode: params["vnp_ResponseCode"],
		BankCode:     params["vnp_BankCode"],
		PayDate:      params["vnp_PayDate"],
	}
	if minor, err := strconv.ParseInt(params["vnp_Amount"], 10, 64); err == nil {
		data.Amount = minor / 100
	}
	if data.TxnRef == "" {
		return nil, domain.ErrInvalidArgument
	}
	return data, nil
}
