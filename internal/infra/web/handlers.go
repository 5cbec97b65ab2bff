package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"music-payment-service/internal/domain"
	"music-payment-service/internal/domain/model"
	"music-payment-service/internal/infra/logging"
	"music-payment-service/internal/infra/redis"
	"music-payment-service/internal/infra/vnpay"
	"music-payment-service/internal/usecase"
)

type createPaymentRequest struct {
	PlanID int64 `json:"plan_id"`
	// UserID is only honored when authentication is disabled; with auth on,
	// the token subject wins.
	UserID int64 `json:"user_id,omitempty"`
}

type createPaymentResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"payment_url"`
	TxnRef     string `json:"txn_ref"`
	Amount     int64  `json:"amount"`
	PlanID     int64  `json:"plan_id"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	userID := req.UserID
	if s.auth != nil {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
			return
		}
		userID, err = claims.UserID()
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
			return
		}
	}
	ctx = logging.WithUserID(ctx, userID)

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, redis.UserActionKey(userID, "create_payment"), s.rate.Requests, s.rate.Window)
		if err != nil {
			logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "too many payment attempts"})
			return
		}
	}

	txn, payURL, err := s.payUC.CreatePaymentURL(ctx, userID, req.PlanID, clientIP(r))
	if err != nil {
		s.writeError(w, err, "failed to create payment")
		return
	}

	writeJSON(w, http.StatusCreated, createPaymentResponse{
		Success:    true,
		PaymentURL: payURL,
		TxnRef:     txn.Ref,
		Amount:     txn.Amount,
		PlanID:     txn.PlanID,
	})
}

// ipnResponse acknowledges a server-to-server notification. Success mirrors
// the payment result, not the delivery; a 200 of any flavor stops retries.
type ipnResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TxnRef  string `json:"txn_ref,omitempty"`
	Amount  int64  `json:"amount,omitempty"`
}

func (s *Server) handleIPN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.payUC.Settle(ctx, queryParams(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSignatureMismatch):
			writeJSON(w, http.StatusBadRequest, ipnResponse{Success: false, Message: "invalid signature"})
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ipnResponse{Success: false, Message: "transaction not found"})
		case errors.Is(err, domain.ErrInvalidArgument):
			writeJSON(w, http.StatusBadRequest, ipnResponse{Success: false, Message: "amount mismatch"})
		default:
			logging.With(ctx, s.log).Error().Err(err).Msg("ipn settlement failed")
			writeJSON(w, http.StatusInternalServerError, ipnResponse{Success: false, Message: "internal error"})
		}
		return
	}

	txn := res.Transaction
	switch res.Outcome {
	case usecase.OutcomeCompleted:
		writeJSON(w, http.StatusOK, ipnResponse{Success: true, Message: "payment settled", TxnRef: txn.Ref, Amount: txn.Amount})
	case usecase.OutcomeFailed:
		writeJSON(w, http.StatusOK, ipnResponse{Success: false, Message: "payment failed", TxnRef: txn.Ref, Amount: txn.Amount})
	default: // OutcomeDuplicate
		writeJSON(w, http.StatusOK, ipnResponse{
			Success: txn.Status == model.TransactionStatusCompleted,
			Message: "already settled",
			TxnRef:  txn.Ref,
			Amount:  txn.Amount,
		})
	}
}

var returnPage = template.Must(template.New("return").Parse(`<!doctype html>
<html lang="vi">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>{{if .OK}}Thanh toán thành công{{else}}Kết quả thanh toán{{end}}</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020}
.small{font-size:12px;color:#666}
</style>
</head>
<body>
<div class="card">
  <h2 class="{{if .OK}}ok{{else}}fail{{end}}">{{if .OK}}Thanh toán thành công{{else}}Thanh toán không thành công{{end}}</h2>
  <p>{{.Msg}}</p>
  {{if .Ref}}<div class="small">Mã giao dịch: {{.Ref}}</div>{{end}}
</div>
</body>
</html>`))

// handleReturn renders the browser-facing landing page. It only verifies the
// signature and displays the result; settlement is the IPN's job.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	data, err := s.gateway.VerifyCallback(queryParams(r))
	if err != nil {
		s.renderReturn(w, http.StatusBadRequest, false, "", "Không thể xác thực kết quả thanh toán.")
		return
	}
	if !data.Succeeded() {
		s.renderReturn(w, http.StatusOK, false, data.TxnRef, "Giao dịch không được chấp thuận bởi ngân hàng.")
		return
	}
	s.renderReturn(w, http.StatusOK, true, data.TxnRef, "Gói Premium của bạn sẽ được kích hoạt trong giây lát.")
}

func (s *Server) renderReturn(w http.ResponseWriter, code int, ok bool, ref, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = returnPage.Execute(w, struct {
		OK  bool
		Ref string
		Msg string
	}{OK: ok, Ref: ref, Msg: msg})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planUC.List(r.Context())
	if err != nil {
		s.writeError(w, err, "Failed to list plans")
		return
	}

	type planView struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Price        int64  `json:"price"`
		DurationDays int    `json:"duration_days"`
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, planView{ID: p.ID, Name: p.Name, Price: p.Price, DurationDays: p.DurationDays})
	}

	writeJSON(w, http.StatusOK, struct {
		Data []planView `json:"data"`
	}{Data: out})
}

func (s *Server) handleLatestSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	sub, err := s.subUC.Latest(r.Context(), userID)
	if err != nil {
		s.writeError(w, err, "Failed to get subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byPlan, err := s.subUC.CountByPlan(ctx)
	if err != nil {
		s.writeError(w, err, "Failed to count subscriptions")
		return
	}

	month, err := s.payUC.SumCompletedByPeriod(ctx, "month")
	if err != nil {
		s.writeError(w, err, "Failed to get revenue")
		return
	}
	year, err := s.payUC.SumCompletedByPeriod(ctx, "year")
	if err != nil {
		s.writeError(w, err, "Failed to get revenue")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		SubsByPlan map[int64]int `json:"subs_by_plan"`
		Revenue    struct {
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue_vnd"`
	}{
		SubsByPlan: byPlan,
		Revenue: struct {
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		}{Month: month, Year: year},
	})
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "too many requests"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: fallback})
	}
}

// queryParams flattens the request query into gateway params, keeping the
// first value of each key.
func queryParams(r *http.Request) vnpay.Params {
	q := r.URL.Query()
	p := make(vnpay.Params, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			p[k] = vs[0]
		}
	}
	return p
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
