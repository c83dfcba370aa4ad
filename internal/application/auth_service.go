package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
	repo "github.com/kaamsetu/kaamsetu-api/internal/domain/repository"
	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
	"github.com/kaamsetu/kaamsetu-api/pkg/notify"
)

// Audit step tags. The sub-step tags match the persisted pipeline
// labels that downstream reporting queries on.
const (
	stepSendOTP       = "SEND_OTP"
	stepSendOTPCheck  = "SEND_OTP_CHECK_USER"
	stepSendOTPUpdate = "SEND_OTP_UPDATE_OTP"
	stepSendOTPInsert = "SEND_OTP_INSERT_USER"
	stepVerifyOTP     = "VERIFY_OTP"
	stepRegister      = "REGISTER"
)

// ClientMeta carries request metadata into the audit trail.
type ClientMeta struct {
	IP     string
	Device string
}

// EventPublisher pushes notification events to the fan-out queue.
// *helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService implements OTP issuance, verification, registration and
// session minting over the credential store. Concurrent requests for
// the same mobile are resolved last-writer-wins on the stored code;
// the single-statement consume keeps verification atomic.
type AuthService struct {
	Identities repo.IdentityRepository
	Profiles   repo.ProfileRepository
	Audit      *Recorder
	Tokens     *helpers.TokenIssuer
	Redis      *redis.Client
	Pub        EventPublisher
	Logger     *logrus.Logger

	OTPTTL time.Duration
	// EchoOTP returns the generated code to the caller and debug log.
	// Must be false in production.
	EchoOTP bool
}

func NewAuthService(identities repo.IdentityRepository, profiles repo.ProfileRepository, audit *Recorder,
	tokens *helpers.TokenIssuer, rdb *redis.Client, pub EventPublisher, logger *logrus.Logger,
	otpTTL time.Duration, echoOTP bool) *AuthService {
	return &AuthService{
		Identities: identities,
		Profiles:   profiles,
		Audit:      audit,
		Tokens:     tokens,
		Redis:      rdb,
		Pub:        pub,
		Logger:     logger,
		OTPTTL:     otpTTL,
		EchoOTP:    echoOTP,
	}
}

// IdentitySummary is the client-facing identity shape.
type IdentitySummary struct {
	ID         string      `json:"id"`
	Mobile     string      `json:"mobile"`
	Role       entity.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
}

func summarize(u *entity.Identity) IdentitySummary {
	return IdentitySummary{ID: u.ID, Mobile: u.Mobile, Role: u.Role, IsVerified: u.IsVerified}
}

func (s *AuthService) record(ctx context.Context, identityID *string, mobile string, role entity.Role,
	step, status, message string, cause error, meta ClientMeta) {
	e := &entity.AuditEntry{
		IdentityID: identityID,
		Mobile:     mobile,
		Role:       string(role),
		Step:       step,
		Status:     status,
		Message:    message,
		IP:         meta.IP,
		Device:     meta.Device,
	}
	if cause != nil {
		detail := cause.Error()
		e.Detail = &detail
	}
	s.Audit.Record(ctx, e)
}

// RequestCode issues a fresh OTP for the mobile, creating the identity
// on first contact. The returned code is empty unless EchoOTP is set.
func (s *AuthService) RequestCode(ctx context.Context, mobile string, role entity.Role, meta ClientMeta) (string, error) {
	mobile = strings.TrimSpace(mobile)
	if len(mobile) < 10 {
		s.record(ctx, nil, mobile, role, stepSendOTP, entity.AuditWarning, "mobile number missing or too short", nil, meta)
		return "", ErrInvalidInput
	}
	if role == "" {
		role = entity.RoleCandidate
	}
	if !role.Valid() {
		s.record(ctx, nil, mobile, role, stepSendOTP, entity.AuditWarning, "unknown role", nil, meta)
		return "", ErrInvalidInput
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		s.record(ctx, nil, mobile, role, stepSendOTP, entity.AuditError, "otp generation failed", err, meta)
		return "", fmt.Errorf("generate otp: %w", err)
	}
	expiry := time.Now().Add(s.OTPTTL)

	existing, err := s.Identities.GetByMobile(ctx, mobile)
	switch {
	case err == nil:
		s.record(ctx, &existing.ID, mobile, existing.Role, stepSendOTPCheck, entity.AuditSuccess, "identity found, refreshing code", nil, meta)
		if err := s.Identities.SetOTP(ctx, existing.ID, code, expiry); err != nil {
			s.record(ctx, &existing.ID, mobile, existing.Role, stepSendOTPUpdate, entity.AuditError, "otp update failed", err, meta)
			return "", fmt.Errorf("store otp: %w", err)
		}
		s.record(ctx, &existing.ID, mobile, existing.Role, stepSendOTPUpdate, entity.AuditSuccess, "otp refreshed", nil, meta)
		role = existing.Role

	case errors.Is(err, repo.ErrNotFound):
		s.record(ctx, nil, mobile, role, stepSendOTPCheck, entity.AuditSuccess, "identity not found, creating", nil, meta)
		ident := &entity.Identity{
			Mobile:    mobile,
			Role:      role,
			IsActive:  true,
			OTPCode:   &code,
			OTPExpiry: &expiry,
		}
		if err := s.Identities.Create(ctx, ident); err != nil {
			// A racing first request may have inserted the row; fall
			// back to overwriting its code, last writer wins.
			if errors.Is(err, repo.ErrDuplicate) {
				return s.RequestCode(ctx, mobile, role, meta)
			}
			s.record(ctx, nil, mobile, role, stepSendOTPInsert, entity.AuditError, "identity insert failed", err, meta)
			return "", fmt.Errorf("create identity: %w", err)
		}
		s.record(ctx, &ident.ID, mobile, role, stepSendOTPInsert, entity.AuditSuccess, "identity created with pending code", nil, meta)

	default:
		s.record(ctx, nil, mobile, role, stepSendOTP, entity.AuditError, "identity lookup failed", err, meta)
		return "", fmt.Errorf("lookup identity: %w", err)
	}

	s.record(ctx, nil, mobile, role, stepSendOTP, entity.AuditSuccess, "otp issued", nil, meta)

	if s.EchoOTP {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"mobile": mobile, "otp": code}).Debug("issued otp (non-production echo)")
		}
		return code, nil
	}
	return "", nil
}

// VerifyResult is the outcome of a successful code verification.
type VerifyResult struct {
	Token            string
	TokenExpiry      time.Time
	Identity         IdentitySummary
	ProfileCompleted bool
	RedirectTo       string
}

// VerifyCode validates the submitted code, consumes it atomically, and
// mints a session token. Expired codes are left in place so the caller
// can tell expiry from a wrong code and re-request.
func (s *AuthService) VerifyCode(ctx context.Context, mobile, code string, meta ClientMeta) (*VerifyResult, error) {
	mobile = strings.TrimSpace(mobile)
	code = strings.TrimSpace(code)
	if mobile == "" || code == "" {
		s.record(ctx, nil, mobile, "", stepVerifyOTP, entity.AuditWarning, "mobile and otp are required", nil, meta)
		return nil, ErrInvalidInput
	}

	ident, err := s.Identities.GetByMobileAndCode(ctx, mobile, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.record(ctx, nil, mobile, "", stepVerifyOTP, entity.AuditWarning, "no matching code", nil, meta)
			return nil, ErrInvalidCode
		}
		s.record(ctx, nil, mobile, "", stepVerifyOTP, entity.AuditError, "code lookup failed", err, meta)
		return nil, fmt.Errorf("lookup code: %w", err)
	}

	if ident.OTPExpiry == nil || ident.OTPExpiry.Before(time.Now()) {
		// Code stays in place; the user must request a new one.
		s.record(ctx, &ident.ID, mobile, ident.Role, stepVerifyOTP, entity.AuditWarning, "code expired", nil, meta)
		return nil, ErrCodeExpired
	}

	ok, err := s.Identities.ConsumeOTP(ctx, ident.ID, code)
	if err != nil {
		s.record(ctx, &ident.ID, mobile, ident.Role, stepVerifyOTP, entity.AuditError, "code consume failed", err, meta)
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		// Raced a newer request-code; only the latest code is valid.
		s.record(ctx, &ident.ID, mobile, ident.Role, stepVerifyOTP, entity.AuditWarning, "code superseded", nil, meta)
		return nil, ErrInvalidCode
	}
	ident.IsVerified = true
	ident.OTPCode = nil
	ident.OTPExpiry = nil

	completed, err := s.profileCompleted(ctx, ident)
	if err != nil {
		s.record(ctx, &ident.ID, mobile, ident.Role, stepVerifyOTP, entity.AuditError, "profile probe failed", err, meta)
		return nil, fmt.Errorf("profile probe: %w", err)
	}

	token, exp, err := s.Tokens.Issue(ident.ID, ident.Mobile, string(ident.Role))
	if err != nil {
		s.record(ctx, &ident.ID, mobile, ident.Role, stepVerifyOTP, entity.AuditError, "session token signing failed", err, meta)
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	s.cacheSession(ctx, ident, exp)
	s.publish(ctx, ident, notify.KindIdentityVerified, "Mobile verified",
		"Your mobile number has been verified. Welcome to KaamSetu!")

	s.record(ctx, &ident.ID, mobile, ident.Role, stepVerifyOTP, entity.AuditSuccess, "otp verified, session issued", nil, meta)

	return &VerifyResult{
		Token:            token,
		TokenExpiry:      exp,
		Identity:         summarize(ident),
		ProfileCompleted: completed,
		RedirectTo:       RedirectHint(ident.Role, completed),
	}, nil
}

// RegisterInput is the direct-signup request.
type RegisterInput struct {
	Mobile   string
	Email    string
	Password string
	Role     entity.Role
}

// RegisterResult mirrors VerifyResult's token shape for direct signup.
type RegisterResult struct {
	Token       string
	TokenExpiry time.Time
	Identity    IdentitySummary
}

// Register creates an identity with an optional password credential.
// The identity starts unverified; a session token is still returned
// (the mobile OTP round-trip remains the only path to verified=true).
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta ClientMeta) (*RegisterResult, error) {
	mobile := strings.TrimSpace(in.Mobile)
	if mobile == "" {
		s.record(ctx, nil, mobile, in.Role, stepRegister, entity.AuditWarning, "mobile number is required", nil, meta)
		return nil, ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = entity.RoleCandidate
	}
	if !role.Valid() {
		s.record(ctx, nil, mobile, role, stepRegister, entity.AuditWarning, "unknown role", nil, meta)
		return nil, ErrInvalidInput
	}

	exists, err := s.Identities.ExistsByMobile(ctx, mobile)
	if err != nil {
		s.record(ctx, nil, mobile, role, stepRegister, entity.AuditError, "existence check failed", err, meta)
		return nil, fmt.Errorf("check mobile: %w", err)
	}
	if exists {
		s.record(ctx, nil, mobile, role, stepRegister, entity.AuditWarning, "mobile already registered", nil, meta)
		return nil, ErrAlreadyExists
	}

	ident := &entity.Identity{
		Mobile:   mobile,
		Role:     role,
		IsActive: true,
	}
	if in.Email != "" {
		email := in.Email
		ident.Email = &email
	}
	if in.Password != "" {
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			s.record(ctx, nil, mobile, role, stepRegister, entity.AuditError, "password hashing failed", err, meta)
			return nil, fmt.Errorf("hash password: %w", err)
		}
		ident.PasswordHash = &hash
	}

	if err := s.Identities.Create(ctx, ident); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			s.record(ctx, nil, mobile, role, stepRegister, entity.AuditWarning, "mobile already registered", nil, meta)
			return nil, ErrAlreadyExists
		}
		s.record(ctx, nil, mobile, role, stepRegister, entity.AuditError, "identity insert failed", err, meta)
		return nil, fmt.Errorf("create identity: %w", err)
	}

	token, exp, err := s.Tokens.Issue(ident.ID, ident.Mobile, string(ident.Role))
	if err != nil {
		s.record(ctx, &ident.ID, mobile, role, stepRegister, entity.AuditError, "session token signing failed", err, meta)
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	s.cacheSession(ctx, ident, exp)
	s.publish(ctx, ident, notify.KindIdentityRegistered, "Welcome to KaamSetu",
		"Your account has been created. Verify your mobile number to unlock all features.")

	s.record(ctx, &ident.ID, mobile, role, stepRegister, entity.AuditSuccess, "identity registered", nil, meta)

	return &RegisterResult{Token: token, TokenExpiry: exp, Identity: summarize(ident)}, nil
}

func (s *AuthService) profileCompleted(ctx context.Context, ident *entity.Identity) (bool, error) {
	switch ident.Role {
	case entity.RoleAdmin:
		return true, nil
	case entity.RoleEmployer:
		return s.Profiles.EmployerProfileExists(ctx, ident.ID)
	default:
		return s.Profiles.CandidateProfileExists(ctx, ident.ID)
	}
}

func sessionKey(identityID string) string {
	return "auth:session:" + identityID
}

// cacheSession records session metadata in Redis, best-effort.
func (s *AuthService) cacheSession(ctx context.Context, ident *entity.Identity, exp time.Time) {
	if s.Redis == nil {
		return
	}
	key := sessionKey(ident.ID)
	fields := map[string]any{
		"identity_id": ident.ID,
		"mobile":      ident.Mobile,
		"role":        string(ident.Role),
		"is_verified": ident.IsVerified,
		"created_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.ExpireAt(ctx, key, exp)
	if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis session cache failed")
	}
}

// publish enqueues a notification event, best-effort.
func (s *AuthService) publish(ctx context.Context, ident *entity.Identity, kind, title, body string) {
	if s.Pub == nil {
		return
	}
	ev := notify.NewEvent("user:"+ident.ID, kind, title, body)
	if ident.Email != nil {
		ev.Email = *ident.Email
	}
	if err := s.Pub.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("kind", kind).Warn("notify publish failed")
	}
}
