package onchain

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/cuihairu/bonfire/internal/game"
)

// PaymentHeader is the request header carrying the signed payment.
const PaymentHeader = "X-PAYMENT"

type PaymentConfig struct {
	Network       string
	ChainID       int64
	TokenAddress  string
	PayTo         string
	DefaultAmount string
	Decimals      int
	// FacilitatorURL, when set, receives POST /verify for every payment
	// that passes the local checks.
	FacilitatorURL string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Requirements is what the server expects a payment to satisfy.
type Requirements struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	ChainID           int64  `json:"chainId"`
	Asset             string `json:"asset"`
	PayTo             string `json:"payTo"`
	MaxAmountRequired string `json:"maxAmountRequired"`
}

type Receipt struct {
	Payer       string `json:"payer"`
	Amount      string `json:"amount"`
	Network     string `json:"network"`
	Fingerprint string `json:"fingerprint"`
}

type paymentEnvelope struct {
	X402Version int    `json:"x402Version"`
	Scheme      string `json:"scheme"`
	Network     string `json:"network"`
	Asset       string `json:"asset,omitempty"`
	Payload     struct {
		Signature     string `json:"signature"`
		Authorization struct {
			From        string `json:"from"`
			To          string `json:"to"`
			Value       string `json:"value"`
			ValidAfter  string `json:"validAfter"`
			ValidBefore string `json:"validBefore"`
			Nonce       string `json:"nonce"`
		} `json:"authorization"`
	} `json:"payload"`
}

// PaymentVerifier checks x402 "exact" payment headers against the configured
// network, token, recipient and amount, and rejects replays.
type PaymentVerifier struct {
	cfg  PaymentConfig
	http *http.Client
	now  func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewPaymentVerifier(cfg PaymentConfig) *PaymentVerifier {
	if cfg.Decimals <= 0 {
		cfg.Decimals = 6
	}
	if cfg.DefaultAmount == "" {
		cfg.DefaultAmount = "0.01"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = defaultHTTPClient(cfg.Timeout)
	}
	return &PaymentVerifier{cfg: cfg, http: hc, now: time.Now, seen: map[string]time.Time{}}
}

// Requirements returns the expectations for amount, or the default amount
// when amount is empty.
func (v *PaymentVerifier) Requirements(amount string) (Requirements, error) {
	if strings.TrimSpace(amount) == "" {
		amount = v.cfg.DefaultAmount
	}
	atomic, err := toAtomic(amount, v.cfg.Decimals)
	if err != nil {
		return Requirements{}, err
	}
	return Requirements{
		Scheme:            "exact",
		Network:           v.cfg.Network,
		ChainID:           v.cfg.ChainID,
		Asset:             v.cfg.TokenAddress,
		PayTo:             v.cfg.PayTo,
		MaxAmountRequired: atomic.String(),
	}, nil
}

// Verify validates header against the expected amount and reserves the
// payment so it cannot be presented again. Callers that fail to deliver
// what was paid for hand the reservation back with Release. Every failure
// wraps game.ErrPaymentInvalid.
func (v *PaymentVerifier) Verify(ctx context.Context, header, amount string) (Receipt, error) {
	req, err := v.Requirements(amount)
	if err != nil {
		return Receipt{}, invalidPayment("expected amount: %v", err)
	}
	env, err := decodeEnvelope(header)
	if err != nil {
		return Receipt{}, invalidPayment("%v", err)
	}
	auth := env.Payload.Authorization
	switch {
	case env.Scheme != "exact":
		return Receipt{}, invalidPayment("unsupported scheme %q", env.Scheme)
	case !strings.EqualFold(env.Network, req.Network):
		return Receipt{}, invalidPayment("network %q, want %q", env.Network, req.Network)
	case env.Asset != "" && !strings.EqualFold(env.Asset, req.Asset):
		return Receipt{}, invalidPayment("token %s not accepted", env.Asset)
	case req.PayTo != "" && !strings.EqualFold(auth.To, req.PayTo):
		return Receipt{}, invalidPayment("payment recipient %s, want %s", auth.To, req.PayTo)
	}
	if !isHexBytes(env.Payload.Signature, 65) {
		return Receipt{}, invalidPayment("malformed signature")
	}
	if !isHexBytes(auth.Nonce, 32) {
		return Receipt{}, invalidPayment("malformed nonce")
	}
	paid, ok := new(big.Int).SetString(auth.Value, 10)
	want, _ := new(big.Int).SetString(req.MaxAmountRequired, 10)
	if !ok || paid.Cmp(want) < 0 {
		return Receipt{}, invalidPayment("value %s below required %s", auth.Value, req.MaxAmountRequired)
	}
	now := v.now()
	if after, err := unixField(auth.ValidAfter); err != nil || now.Before(after) {
		return Receipt{}, invalidPayment("payment not yet valid")
	}
	before, err := unixField(auth.ValidBefore)
	if err != nil || (!before.IsZero() && !now.Before(before)) {
		return Receipt{}, invalidPayment("payment expired")
	}

	fp := Fingerprint(env.Network, auth.From, auth.Nonce)
	if v.cfg.FacilitatorURL != "" {
		body := map[string]any{"x402Version": env.X402Version, "paymentPayload": env, "paymentRequirements": req}
		out, err := doJSON(ctx, v.http, http.MethodPost, strings.TrimRight(v.cfg.FacilitatorURL, "/")+"/verify", "", body)
		if err != nil {
			return Receipt{}, invalidPayment("facilitator: %v", err)
		}
		if valid, _ := out["isValid"].(bool); !valid {
			reason, _ := out["invalidReason"].(string)
			return Receipt{}, invalidPayment("facilitator rejected payment: %s", reason)
		}
	}
	if err := v.remember(fp, before); err != nil {
		return Receipt{}, err
	}
	return Receipt{Payer: game.NormalizeWallet(auth.From), Amount: paid.String(), Network: env.Network, Fingerprint: fp}, nil
}

func (v *PaymentVerifier) remember(fp string, expires time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	for k, exp := range v.seen {
		if !exp.IsZero() && now.After(exp) {
			delete(v.seen, k)
		}
	}
	if _, dup := v.seen[fp]; dup {
		return invalidPayment("payment already used")
	}
	v.seen[fp] = expires
	return nil
}

// Release drops the reservation Verify made for fingerprint, so the same
// payment header can be retried.
func (v *PaymentVerifier) Release(fingerprint string) {
	v.mu.Lock()
	delete(v.seen, fingerprint)
	v.mu.Unlock()
}

// Fingerprint identifies a payment authorization: keccak256 over
// network, payer and nonce.
func Fingerprint(network, from, nonce string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.ToLower(network)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(from)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(nonce)))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

func decodeEnvelope(header string) (paymentEnvelope, error) {
	var env paymentEnvelope
	header = strings.TrimSpace(header)
	if header == "" {
		return env, fmt.Errorf("missing %s header", PaymentHeader)
	}
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(header); err != nil {
			return env, fmt.Errorf("payment header is not base64")
		}
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("payment header is not JSON: %v", err)
	}
	return env, nil
}

func toAtomic(amount string, decimals int) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("bad amount %q", amount)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", amount, decimals)
	}
	return new(big.Int).Set(r.Num()), nil
}

func unixField(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return time.Time{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(n, 0), nil
}

func isHexBytes(s string, n int) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*n {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func invalidPayment(format string, args ...any) error {
	return fmt.Errorf("%w: %s", game.ErrPaymentInvalid, fmt.Sprintf(format, args...))
}
