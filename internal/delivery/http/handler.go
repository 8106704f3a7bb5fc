package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/boopathydreams/capnpay-upi/internal/domain"
	"github.com/boopathydreams/capnpay-upi/internal/launch"
	"github.com/boopathydreams/capnpay-upi/internal/upi"
	"github.com/boopathydreams/capnpay-upi/internal/usecase"
)

type Handler struct {
	flow     *usecase.ScanWorkflow
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(flow *usecase.ScanWorkflow, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		flow:     flow,
		validate: validator.New(),
		logger:   logger,
	}
}

type RouterConfig struct {
	Sig            SigConfig
	AllowedOrigins []string
}

func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Timestamp", "X-Signature"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(SignatureMiddleware(cfg.Sig))

	r.Post("/api/v1/parse", h.ParsePayload)
	r.Post("/api/v1/build", h.BuildLink)
	r.Post("/api/v1/scan", h.SubmitScan)
	r.Post("/api/v1/pay", h.ConfirmPayment)
	r.Post("/api/v1/launch", h.MarkLaunching)
	r.Post("/api/v1/reset", h.ResetSession)
	r.Get("/api/v1/sessions/{sessionID}", h.GetSession)
	r.Get("/api/v1/healthz", h.Healthz)

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var perr *upi.ParseError
	var derr *usecase.DebounceError
	switch {
	case errors.As(err, &perr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrResp{Error: "not a valid payment code", Kind: string(perr.Kind)})
	case errors.As(err, &derr):
		writeJSON(w, http.StatusTooManyRequests, ErrResp{Error: "scanner re-arming", RetryAfterMs: derr.RetryAfter.Milliseconds()})
	case errors.Is(err, usecase.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, ErrResp{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotArmed), errors.Is(err, usecase.ErrStateConflict):
		writeJSON(w, http.StatusConflict, ErrResp{Error: err.Error()})
	case errors.Is(err, upi.ErrBadAmount), errors.Is(err, usecase.ErrAmountNotPositive):
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrResp{Error: err.Error()})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: "invalid json"})
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: err.Error()})
		return false
	}
	return true
}

// POST /api/v1/parse
func (h *Handler) ParsePayload(w http.ResponseWriter, r *http.Request) {
	var req ParseReq
	if !h.decode(w, r, &req) {
		return
	}

	d, err := usecase.Decode(req.Payload)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDescriptor(d))
}

// POST /api/v1/build
func (h *Handler) BuildLink(w http.ResponseWriter, r *http.Request) {
	var req BuildReq
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.flow.Compose(usecase.ComposeRequest{
		Payload: req.Payload,
		Address: req.Address,
		Name:    req.Name,
		Amount:  req.Amount,
		Note:    req.Note,
		AutoRef: req.AutoRef,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BuildResp{
		DeepLink:   res.DeepLink,
		LaunchPlan: toCandidates(res.Plan),
		Descriptor: toDescriptor(res.Descriptor),
	})
}

// POST /api/v1/scan
func (h *Handler) SubmitScan(w http.ResponseWriter, r *http.Request) {
	var req ScanReq
	if !h.decode(w, r, &req) {
		return
	}

	s, err := h.flow.Submit(req.SessionID, req.Payload)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(s))
}

// POST /api/v1/pay
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req PayReq
	if !h.decode(w, r, &req) {
		return
	}

	s, err := h.flow.ConfirmPayment(req.SessionID, req.Amount, req.Note, req.AutoRef)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(s))
}

// POST /api/v1/launch
func (h *Handler) MarkLaunching(w http.ResponseWriter, r *http.Request) {
	var req SessionReq
	if !h.decode(w, r, &req) {
		return
	}

	s, err := h.flow.MarkLaunching(req.SessionID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(s))
}

// POST /api/v1/reset
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	var req SessionReq
	if !h.decode(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, toSession(h.flow.Reset(req.SessionID)))
}

// GET /api/v1/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.flow.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(s))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toDescriptor(d domain.PaymentDescriptor) DescriptorItem {
	return DescriptorItem{
		PayeeAddress:    d.PayeeAddress,
		PayeeName:       d.PayeeName,
		Amount:          d.Amount,
		Note:            d.Note,
		CurrencyCode:    d.CurrencyCode,
		MerchantCode:    d.MerchantCode,
		TransactionRef:  d.TransactionRef,
		OriginalPayload: d.OriginalPayload,
		IsMerchant:      d.IsMerchant,
	}
}

func toCandidates(plan []launch.Candidate) []CandidateItem {
	out := make([]CandidateItem, 0, len(plan))
	for _, c := range plan {
		out = append(out, CandidateItem{App: c.App, URI: c.URI})
	}
	return out
}

func toSession(s usecase.Session) SessionResp {
	resp := SessionResp{
		SessionID:  s.ID,
		State:      string(s.State),
		DeepLink:   s.DeepLink,
		LaunchPlan: toCandidates(s.Plan),
	}
	if s.Descriptor != nil {
		d := toDescriptor(*s.Descriptor)
		resp.Descriptor = &d
	}
	return resp
}
