package twofactor

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mfakit/pkg/enrollment"
	"mfakit/pkg/logger"
)

// Service exposes the two-factor credential lifecycle as a JSON API.
type Service struct {
	enroll *enrollment.Service
	log    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the HTTP service over the enrollment lifecycle service.
func NewService(enroll *enrollment.Service, opts ...Option) *Service {
	s := &Service{
		enroll: enroll,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the router for mounting, typically at /2fa.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/enroll", s.handleEnroll)
	r.Post("/verify", s.handleVerify)
	r.Post("/login", s.handleLogin)
	r.Post("/recover", s.handleRecover)
	r.Delete("/{userID}", s.handleDisable)
	return r
}

func (s *Service) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if !s.decode(w, r, &req) {
		return
	}

	enr, err := s.enroll.Begin(r.Context(), req.UserID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, enrollment.ErrMissingUserID), errors.Is(err, enrollment.ErrMissingEmail):
			s.writeError(w, http.StatusBadRequest, "user_id and email are required")
		case errors.Is(err, enrollment.ErrAlreadyEnrolled):
			s.writeError(w, http.StatusConflict, "two-factor authentication is already enabled")
		default:
			s.serverError(w, r, "failed to start enrollment", err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, EnrollResponse{
		SessionID:       enr.SessionID,
		Secret:          enr.Secret,
		QRCodeDataURL:   enr.QRCodeDataURL,
		ManualEntryCode: enr.ManualEntryCode,
	})
}

func (s *Service) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.Code == "" {
		s.writeError(w, http.StatusBadRequest, "session_id and code are required")
		return
	}

	res, err := s.enroll.Verify(r.Context(), req.SessionID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, enrollment.ErrSessionNotFound), errors.Is(err, enrollment.ErrSessionExpired):
			// One message for both: an attacker probing session IDs learns
			// nothing about whether one ever existed.
			s.writeError(w, http.StatusGone, "enrollment session is no longer valid")
		default:
			s.serverError(w, r, "failed to verify code", err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Allowed:           res.Allowed,
		RemainingAttempts: res.RemainingAttempts,
		BackupCodes:       res.BackupCodes,
	})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Code == "" {
		s.writeError(w, http.StatusBadRequest, "user_id and code are required")
		return
	}

	res, err := s.enroll.VerifyLogin(r.Context(), req.UserID, req.Code)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotEnrolled) {
			s.writeError(w, http.StatusNotFound, "two-factor authentication is not enabled")
			return
		}
		s.serverError(w, r, "failed to verify code", err)
		return
	}

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Allowed:           res.Allowed,
		RemainingAttempts: res.RemainingAttempts,
	})
}

func (s *Service) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Code == "" {
		s.writeError(w, http.StatusBadRequest, "user_id and code are required")
		return
	}

	res, err := s.enroll.Recover(r.Context(), req.UserID, req.Code)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotEnrolled) {
			s.writeError(w, http.StatusNotFound, "two-factor authentication is not enabled")
			return
		}
		s.serverError(w, r, "failed to verify backup code", err)
		return
	}

	s.writeJSON(w, http.StatusOK, RecoverResponse{
		Allowed:           res.Allowed,
		RemainingAttempts: res.RemainingAttempts,
		RemainingCodes:    res.RemainingCodes,
	})
}

func (s *Service) handleDisable(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	if err := s.enroll.Disable(r.Context(), userID); err != nil {
		s.serverError(w, r, "failed to disable two-factor authentication", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", logger.Error(err))
	}
}

// serverError logs the real cause and returns a generic message.
func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Service) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.log.ErrorContext(r.Context(), msg,
		logger.Error(err),
		logger.Component("twofactor"),
		slog.String("path", r.URL.Path),
	)
	s.writeError(w, http.StatusInternalServerError, msg)
}
