package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
	"github.com/culturecart/accounts-api/internal/infrastructure/db/memory"
	"github.com/culturecart/accounts-api/internal/pkg/password"
	"github.com/culturecart/accounts-api/internal/pkg/token"
)

const testSecret = "secret"

type recordedSessions struct {
	mu       sync.Mutex
	sessions []domain.Session
}

func (r *recordedSessions) Record(s domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
}

func (r *recordedSessions) all() []domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Session(nil), r.sessions...)
}

type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	limit    int
	err      error
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) Blocked(_ context.Context, ip, email string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return false, t.err
	}
	return t.failures[ip+"|"+email] >= t.limit, nil
}

func (t *stubThrottle) Fail(_ context.Context, ip, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[ip+"|"+email]++
	return t.err
}

func (t *stubThrottle) Reset(_ context.Context, ip, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, ip+"|"+email)
	return t.err
}

type stubStorage struct {
	mu     sync.Mutex
	names  []string
	types  []string
	bodies []string
	err    error
}

func (s *stubStorage) Put(_ context.Context, filename string, r io.Reader, _ int64, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, filename)
	s.types = append(s.types, contentType)
	s.bodies = append(s.bodies, string(body))
	return "/uploads/" + filename, nil
}

// failingUsers wraps a repository and fails every lookup with err.
type failingUsers struct {
	*memory.UserRepository
	err error
}

func (f failingUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, f.err
}

// racingUsers simulates a concurrent first contact: the pre-check finds no
// account, then Create loses to winner, which is inserted at that moment.
type racingUsers struct {
	*memory.UserRepository
	winner *domain.User
}

func (r racingUsers) Create(ctx context.Context, _ *domain.User) (*domain.User, error) {
	if _, err := r.UserRepository.Create(ctx, r.winner); err != nil {
		return nil, err
	}
	return nil, domain.ErrEmailTaken
}

var errBoom = errors.New("boom")

type authFixture struct {
	svc      *AuthService
	users    *memory.UserRepository
	sessions *recordedSessions
	throttle *stubThrottle
	tokens   *token.JWT
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    memory.NewUserRepository(),
		sessions: &recordedSessions{},
		throttle: newStubThrottle(5),
		tokens:   token.NewJWT(testSecret),
	}
	f.svc = NewAuthService(f.users, password.NewHasher(bcrypt.MinCost, 4), f.tokens, f.sessions, f.throttle, zerolog.Nop())
	return f
}

// Leading bytes of real image formats, enough for content detection.
const (
	pngData  = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01"
	jpegData = "\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01"
)

func upload(name, contentType, body string) ports.UploadFile {
	return ports.UploadFile{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Content:     strings.NewReader(body),
	}
}
