// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/apperr"
	"github.com/farhetkoun/tradecraft/internal/platform/constants"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
	"github.com/farhetkoun/tradecraft/internal/platform/middleware"
	"github.com/farhetkoun/tradecraft/internal/platform/ratelimit"
	requestutil "github.com/farhetkoun/tradecraft/internal/platform/request"
	"github.com/farhetkoun/tradecraft/internal/platform/respond"
	"github.com/farhetkoun/tradecraft/internal/platform/validate"
)

// # Wire Shapes

type createSessionRequest struct {
	IDToken string `json:"idToken"`
}

type createSessionResponse struct {
	Success  bool          `json:"success"`
	Role     identity.Role `json:"role"`
	Redirect string        `json:"redirect"`
}

type sessionInfoResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	UID      string `json:"uid"`

	// Role is a pointer so an unassigned role serializes as null, which is
	// what the deployed frontends test against.
	Role *identity.Role `json:"role"`

	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

type anonymousResponse struct {
	LoggedIn bool `json:"loggedIn"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type csrfResponse struct {
	Token string `json:"token"`
}

type setRoleRequest struct {
	Role    string `json:"role"`
	IDToken string `json:"idToken"`
}

type setRoleResponse struct {
	Success bool          `json:"success"`
	Role    identity.Role `json:"role"`
	Already bool          `json:"already"`
}

type verificationSettingResponse struct {
	Required   bool `json:"required"`
	Configured bool `json:"configured"`
}

type verificationSettingRequest struct {
	Required *bool `json:"required"`
}

// # Handler

// Handler exposes the session lifecycle under /api/auth and the related
// operator toggles under /api/admin.
type Handler struct {
	service  *Service
	settings SettingStore
	limiter  *ratelimit.Limiter
	secure   bool
}

// NewHandler constructs a [Handler]. secure controls the cookie Secure
// attribute and should be true in production.
func NewHandler(service *Service, settings SettingStore, limiter *ratelimit.Limiter, secure bool) *Handler {
	return &Handler{
		service:  service,
		settings: settings,
		limiter:  limiter,
		secure:   secure,
	}
}

// Routes returns the /api/auth router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.NotFound(notFound)

	router.Get("/csrf", handler.MintCSRF)
	router.Post("/session", handler.CreateSession)
	router.Get("/session", handler.GetSession)
	router.Post("/logout", handler.Logout)
	router.Post("/set-role", handler.SetRole)

	return router
}

// notFound keeps unknown paths inside the JSON error contract instead of
// chi's plain-text default.
func notFound(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.NotFound("Resource"))
}

// AdminRoutes returns the /api/admin/settings router. The caller mounts it
// behind admin authorization.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.NotFound(notFound)

	router.Get("/settings/email-verification", handler.GetVerificationSetting)
	router.Put("/settings/email-verification", handler.PutVerificationSetting)

	return router
}

// # Endpoints

/*
MintCSRF handles GET /api/auth/csrf.

It generates a fresh double-submit token, stores it in the CSRF cookie, and
returns it in the body so the client can echo it in the x-csrf-token header.
*/
func (handler *Handler) MintCSRF(writer http.ResponseWriter, request *http.Request) {
	if !handler.allow(writer, request, "csrf", constants.RateLimitCSRF, constants.RateWindowCSRF) {
		return
	}

	token, err := MintCSRFToken()
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	SetCSRFCookie(writer, token, handler.secure)
	respond.OK(writer, csrfResponse{Token: token})
}

/*
CreateSession handles POST /api/auth/session.

Exchange order: rate limit, CSRF, payload validation, then the full
establishment flow. The session cookie is only ever set on success.
*/
func (handler *Handler) CreateSession(writer http.ResponseWriter, request *http.Request) {
	if !handler.allow(writer, request, "session", constants.RateLimitSession, constants.RateWindowSession) {
		return
	}
	if !handler.checkCSRF(writer, request) {
		return
	}

	var payload createSessionRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("idToken", payload.IDToken).
		MaxLen("idToken", payload.IDToken, constants.MaxIDTokenLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Establish(request.Context(), payload.IDToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	SetSessionCookie(writer, request, result.Artifact, handler.secure)
	respond.OK(writer, createSessionResponse{
		Success:  true,
		Role:     result.Role,
		Redirect: result.Redirect,
	})
}

/*
GetSession handles GET /api/auth/session.

Every failure mode answers 200 {loggedIn:false}; the endpoint never reveals
why a session is not usable.
*/
func (handler *Handler) GetSession(writer http.ResponseWriter, request *http.Request) {
	if !handler.allow(writer, request, "session:get", constants.RateLimitSessionGet, constants.RateWindowGet) {
		return
	}

	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		respond.OK(writer, anonymousResponse{LoggedIn: false})
		return
	}

	user := handler.service.Inspect(request.Context(), cookie.Value)
	if user == nil {
		respond.OK(writer, anonymousResponse{LoggedIn: false})
		return
	}

	var role *identity.Role
	if user.Role.IsAssigned() {
		role = &user.Role
	}

	respond.OK(writer, sessionInfoResponse{
		LoggedIn:      true,
		UID:           user.UID,
		Role:          role,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	})
}

/*
Logout handles POST /api/auth/logout.

Always answers {success:true} and clears the cookie, even when no valid
session was presented. Revocation of outstanding credentials is best-effort.
*/
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	if !handler.allow(writer, request, "logout", constants.RateLimitLogout, constants.RateWindowLogout) {
		return
	}
	if !handler.checkCSRF(writer, request) {
		return
	}

	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
		handler.service.Logout(request.Context(), cookie.Value)
	}

	ClearSessionCookie(writer, handler.secure)
	respond.OK(writer, logoutResponse{Success: true})
}

/*
SetRole handles POST /api/auth/set-role.

The role must be client or vendor; admin is never assignable here. The
service additionally requires a matching registration record.
*/
func (handler *Handler) SetRole(writer http.ResponseWriter, request *http.Request) {
	if !handler.allow(writer, request, "set-role", constants.RateLimitSetRole, constants.RateWindowSetRole) {
		return
	}
	if !handler.checkCSRF(writer, request) {
		return
	}

	var payload setRoleRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("role", payload.Role)
	if !validator.HasErrors() {
		validator.OneOf("role", payload.Role, string(identity.RoleClient), string(identity.RoleVendor))
	}
	validator.Required("idToken", payload.IDToken).
		MaxLen("idToken", payload.IDToken, constants.MaxIDTokenLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, already, err := handler.service.AssignRole(request.Context(), payload.IDToken, identity.Role(payload.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setRoleResponse{Success: true, Role: role, Already: already})
}

// GetVerificationSetting handles GET /api/admin/settings/email-verification.
func (handler *Handler) GetVerificationSetting(writer http.ResponseWriter, request *http.Request) {
	required, present, err := handler.settings.EmailVerification(request.Context())
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	// The enforcement default for an unwritten setting is "required".
	if !present {
		required = true
	}
	respond.OK(writer, verificationSettingResponse{Required: required, Configured: present})
}

// PutVerificationSetting handles PUT /api/admin/settings/email-verification.
func (handler *Handler) PutVerificationSetting(writer http.ResponseWriter, request *http.Request) {
	if !handler.checkCSRF(writer, request) {
		return
	}

	var payload verificationSettingRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Custom("required", payload.Required == nil, "This field is required").Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.settings.SetEmailVerification(request.Context(), *payload.Required); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	// Audit trail for a security-relevant toggle.
	logFields := []any{slog.Bool("required", *payload.Required)}
	if admin := requestutil.SessionUser(request); admin != nil {
		logFields = append(logFields, slog.String("uid", admin.UID))
	}
	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "verification_setting_changed", logFields...)

	respond.OK(writer, verificationSettingResponse{Required: *payload.Required, Configured: true})
}

// # Guards

// allow applies the endpoint's fixed-window budget keyed by client IP.
// It writes the 429 itself and reports whether the request may proceed.
func (handler *Handler) allow(writer http.ResponseWriter, request *http.Request, name string, limit int64, window time.Duration) bool {
	key := name + ":" + middleware.RealIP(request)

	result, err := handler.limiter.Allow(request.Context(), key, limit, window)
	if err != nil {
		// Fail open but leave a trace; a dead counter store should page, not 429.
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "ratelimit_check_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	if !result.Allowed {
		retryAfter := int(result.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		respond.Error(writer, request, apperr.RateLimited(retryAfter))
		return false
	}
	return true
}

// checkCSRF enforces the double-submit pair on mutating endpoints. It runs
// before any credential work so a forged request learns nothing.
func (handler *Handler) checkCSRF(writer http.ResponseWriter, request *http.Request) bool {
	cookie, err := request.Cookie(constants.CSRFCookieName)
	cookieValue := ""
	if err == nil {
		cookieValue = cookie.Value
	}

	if !VerifyCSRFPair(cookieValue, request.Header.Get(constants.HeaderXCSRFToken)) {
		respond.Error(writer, request, errCSRFMismatch())
		return false
	}
	return true
}
