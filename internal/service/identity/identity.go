package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	pasetotoken "github.com/Alijeyrad/medibook_backend/pkg/paseto"
	"github.com/Alijeyrad/medibook_backend/pkg/util/password"
	"github.com/Alijeyrad/medibook_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterPatientRequest struct {
	Name     string
	Phone    string
	Password string
}

type RegisterDoctorRequest struct {
	Name       string
	Email      string
	Password   string
	Specialty  string
	Experience string
	Rating     float64
	Image      string
}

type AuthTokens struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // seconds until the access token expires
	Session      *Session `json:"session"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*repo.Patient, error)
	RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*repo.Doctor, error)
	AuthenticatePatient(ctx context.Context, phone, password string) (*AuthTokens, error)
	AuthenticateDoctor(ctx context.Context, email, password string) (*AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Session(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	// SessionFromToken verifies an access token and loads its live session.
	SessionFromToken(ctx context.Context, accessToken string) (*Session, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type identityService struct {
	db       *repo.Client
	sessions SessionStore
	tokens   *pasetotoken.Manager
	hasher   *password.Hasher
	region   string
	minPass  int
	now      func() time.Time
}

func New(
	db *repo.Client,
	sessions SessionStore,
	tokens *pasetotoken.Manager,
	hasher *password.Hasher,
	cfg *config.Config,
) Service {
	minPass := cfg.Identity.MinPasswordLength
	if minPass <= 0 {
		minPass = 6
	}
	return &identityService{
		db:       db,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		region:   cfg.Identity.DefaultRegion,
		minPass:  minPass,
		now:      time.Now,
	}
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func (s *identityService) RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*repo.Patient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	num, err := phone.Parse(req.Phone, s.region)
	if err != nil {
		return nil, ErrInvalidPhone
	}
	if len(req.Password) < s.minPass {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, s.minPass)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &repo.Patient{
		ID:           repo.NewID(),
		Name:         name,
		Phone:        num.National,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.Patient.Create(ctx, p); err != nil {
		if repo.IsConflict(err) {
			return nil, fmt.Errorf("%w: phone %s", ErrConflict, num.National)
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *identityService) RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*repo.Doctor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < s.minPass {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, s.minPass)
	}
	sp, err := s.db.Specialty.GetByName(ctx, strings.TrimSpace(req.Specialty))
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpecialty, req.Specialty)
		}
		return nil, fmt.Errorf("get specialty: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	d := &repo.Doctor{
		ID:           repo.NewID(),
		Name:         name,
		Email:        email,
		Specialty:    sp.Name,
		PasswordHash: hash,
		Experience:   strings.TrimSpace(req.Experience),
		Rating:       req.Rating,
		Image:        strings.TrimSpace(req.Image),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.Doctor.Create(ctx, d); err != nil {
		if repo.IsConflict(err) {
			return nil, fmt.Errorf("%w: email %s", ErrConflict, email)
		}
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return d, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

func (s *identityService) AuthenticatePatient(ctx context.Context, rawPhone, pass string) (*AuthTokens, error) {
	num, err := phone.Parse(rawPhone, s.region)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	p, err := s.db.Patient.GetByPhone(ctx, num.National)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if err := s.hasher.Verify(p.PasswordHash, pass); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.createSession(ctx, &Session{
		Role:      RolePatient,
		SubjectID: p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
	})
}

func (s *identityService) AuthenticateDoctor(ctx context.Context, rawEmail, pass string) (*AuthTokens, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	d, err := s.db.Doctor.GetByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	if err := s.hasher.Verify(d.PasswordHash, pass); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.createSession(ctx, &Session{
		Role:      RoleDoctor,
		SubjectID: d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Specialty: d.Specialty,
	})
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func (s *identityService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil || claims.Type != pasetotoken.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.SubjectID != claims.SubjectID {
		return nil, ErrInvalidToken
	}

	ttl := s.tokens.RefreshTTL()
	if err := s.sessions.Touch(ctx, sess.ID, ttl); err != nil {
		return nil, err
	}
	sess.ExpiresAt = s.now().Add(ttl)

	access, _, err := s.tokens.IssueAccess(pasetotoken.Subject{ID: sess.SubjectID, Role: sess.Role, SessionID: sess.ID})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	// The refresh token stays the same until logout.
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		Session:      sess,
	}, nil
}

func (s *identityService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		slog.Debug("identity: logout of expired session", "session_id", sessionID)
	}
	return nil
}

func (s *identityService) Session(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

func (s *identityService) SessionFromToken(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil || claims.Type != pasetotoken.TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if sess.SubjectID != claims.SubjectID || sess.Role != claims.Role {
		return nil, ErrInvalidToken
	}
	return sess, nil
}

func (s *identityService) createSession(ctx context.Context, sess *Session) (*AuthTokens, error) {
	ttl := s.tokens.RefreshTTL()
	now := s.now().UTC()
	sess.ID = uuid.Must(uuid.NewV7())
	sess.CreatedAt = now
	sess.ExpiresAt = now.Add(ttl)

	if err := s.sessions.Save(ctx, sess, ttl); err != nil {
		return nil, err
	}

	subject := pasetotoken.Subject{ID: sess.SubjectID, Role: sess.Role, SessionID: sess.ID}
	access, _, err := s.tokens.IssueAccess(subject)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, _, err := s.tokens.IssueRefresh(subject)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		Session:      sess,
	}, nil
}
