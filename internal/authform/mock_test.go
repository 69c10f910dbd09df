package authform

import (
	"context"
	"errors"
	"sync"

	"github.com/DukeRupert/authui/internal/domain"
)

// =============================================================================
// Mock Backend Implementation
// =============================================================================

// mockBackend implements Backend for testing.
type mockBackend struct {
	SignInWithPasswordFunc    func(ctx context.Context, creds domain.PasswordCredentials) (*domain.AuthResponse, error)
	SignUpFunc                func(ctx context.Context, params domain.SignUpParams) (*domain.AuthResponse, error)
	ResetPasswordForEmailFunc func(ctx context.Context, params domain.ResetPasswordParams) error
	SignInWithOtpFunc         func(ctx context.Context, params domain.OtpParams) error
	UpdateUserFunc            func(ctx context.Context, attrs domain.UserAttributes) (*domain.User, error)
	VerifyOtpFunc             func(ctx context.Context, params domain.VerifyOtpParams) (*domain.AuthResponse, error)
	SignInWithOAuthFunc       func(ctx context.Context, params domain.OAuthParams) (*domain.OAuthResponse, error)

	mu        sync.Mutex
	listeners map[int]func(domain.AuthEvent, *domain.Session)
	nextID    int
}

func (m *mockBackend) SignInWithPassword(ctx context.Context, creds domain.PasswordCredentials) (*domain.AuthResponse, error) {
	if m.SignInWithPasswordFunc != nil {
		return m.SignInWithPasswordFunc(ctx, creds)
	}
	return nil, errors.New("SignInWithPasswordFunc not implemented")
}

func (m *mockBackend) SignUp(ctx context.Context, params domain.SignUpParams) (*domain.AuthResponse, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, params)
	}
	return nil, errors.New("SignUpFunc not implemented")
}

func (m *mockBackend) ResetPasswordForEmail(ctx context.Context, params domain.ResetPasswordParams) error {
	if m.ResetPasswordForEmailFunc != nil {
		return m.ResetPasswordForEmailFunc(ctx, params)
	}
	return errors.New("ResetPasswordForEmailFunc not implemented")
}

func (m *mockBackend) SignInWithOtp(ctx context.Context, params domain.OtpParams) error {
	if m.SignInWithOtpFunc != nil {
		return m.SignInWithOtpFunc(ctx, params)
	}
	return errors.New("SignInWithOtpFunc not implemented")
}

func (m *mockBackend) UpdateUser(ctx context.Context, attrs domain.UserAttributes) (*domain.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, attrs)
	}
	return nil, errors.New("UpdateUserFunc not implemented")
}

func (m *mockBackend) VerifyOtp(ctx context.Context, params domain.VerifyOtpParams) (*domain.AuthResponse, error) {
	if m.VerifyOtpFunc != nil {
		return m.VerifyOtpFunc(ctx, params)
	}
	return nil, errors.New("VerifyOtpFunc not implemented")
}

func (m *mockBackend) SignInWithOAuth(ctx context.Context, params domain.OAuthParams) (*domain.OAuthResponse, error) {
	if m.SignInWithOAuthFunc != nil {
		return m.SignInWithOAuthFunc(ctx, params)
	}
	return nil, errors.New("SignInWithOAuthFunc not implemented")
}

func (m *mockBackend) OnAuthStateChange(fn func(domain.AuthEvent, *domain.Session)) domain.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listeners == nil {
		m.listeners = make(map[int]func(domain.AuthEvent, *domain.Session))
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return mockSubscription(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	})
}

// emit delivers event to every registered listener.
func (m *mockBackend) emit(event domain.AuthEvent) {
	m.mu.Lock()
	fns := make([]func(domain.AuthEvent, *domain.Session), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(event, nil)
	}
}

func (m *mockBackend) listenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

type mockSubscription func()

func (s mockSubscription) Unsubscribe() { s() }
