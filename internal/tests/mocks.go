package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"checkout/internal/domain"
	"checkout/internal/gateway"
	"checkout/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK STOREFRONT GATEWAY
// ──────────────────────────────────────────────

// MockStorefront is a mock implementation of gateway.Storefront.
type MockStorefront struct {
	mu sync.Mutex

	Order   *domain.Order
	Payment *domain.Payment

	// Error injection
	GetOrderError      error
	CreatePaymentError error
	UploadSlipError    error
	GetPaymentError    error

	// Counters for verification
	GetOrderCallCount      int32
	CreatePaymentCallCount int32
	UploadSlipCallCount    int32
	GetPaymentCallCount    int32

	// Captured inputs
	LastCreateRequest gateway.CreatePaymentRequest
	LastUploadData    []byte

	// Hooks run while the call is in flight, before the result is
	// returned. Used to interleave a concurrent action with a pending
	// backend call.
	CreatePaymentHook func()
	UploadSlipHook    func()
}

// NewMockStorefront creates a new mock storefront gateway.
func NewMockStorefront() *MockStorefront {
	return &MockStorefront{}
}

func (m *MockStorefront) GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error) {
	atomic.AddInt32(&m.GetOrderCallCount, 1)
	if m.GetOrderError != nil {
		return nil, m.GetOrderError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Order == nil {
		return nil, &gateway.BackendError{StatusCode: 404, Message: "order not found"}
	}
	order := *m.Order
	return &order, nil
}

func (m *MockStorefront) CreatePayment(ctx context.Context, token string, req gateway.CreatePaymentRequest) (*domain.Payment, error) {
	atomic.AddInt32(&m.CreatePaymentCallCount, 1)
	m.mu.Lock()
	m.LastCreateRequest = req
	m.mu.Unlock()
	if m.CreatePaymentHook != nil {
		m.CreatePaymentHook()
	}
	if m.CreatePaymentError != nil {
		return nil, m.CreatePaymentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment := *m.Payment
	return &payment, nil
}

func (m *MockStorefront) UploadSlip(ctx context.Context, token, paymentID, filename, contentType string, data []byte) (*domain.Payment, error) {
	atomic.AddInt32(&m.UploadSlipCallCount, 1)
	m.mu.Lock()
	m.LastUploadData = data
	m.mu.Unlock()
	if m.UploadSlipHook != nil {
		m.UploadSlipHook()
	}
	if m.UploadSlipError != nil {
		return nil, m.UploadSlipError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment := *m.Payment
	return &payment, nil
}

func (m *MockStorefront) GetPayment(ctx context.Context, token, paymentID string) (*domain.Payment, error) {
	atomic.AddInt32(&m.GetPaymentCallCount, 1)
	if m.GetPaymentError != nil {
		return nil, m.GetPaymentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment := *m.Payment
	return &payment, nil
}

// SetPayment swaps the payment the mock returns next.
func (m *MockStorefront) SetPayment(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Payment = p
}

// ──────────────────────────────────────────────
// MOCK SESSION REPOSITORY
// ──────────────────────────────────────────────

// MockSessionRepository is an in-memory implementation of
// repository.SessionRepository with the same revision semantics as the
// Redis store.
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.CheckoutSession

	// Error injection
	GetError  error
	SaveError error
}

// NewMockSessionRepository creates a new mock session repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.CheckoutSession),
	}
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *session
	return &copy, nil
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.Revision = 1
	copy := *session
	m.sessions[session.ID] = &copy
	return nil
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.CheckoutSession, expectedRevision int64) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Revision != expectedRevision {
		return repository.ErrRevisionConflict
	}
	session.Revision = expectedRevision + 1
	session.UpdatedAt = time.Now()
	copy := *session
	m.sessions[session.ID] = &copy
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Stored returns the stored session for test assertions.
func (m *MockSessionRepository) Stored(id string) *domain.CheckoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the submission locks.
type MockLockStore struct {
	mu    sync.Mutex
	held  map[string]bool
	Fail  bool // force acquisition failures
	Error error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (m *MockLockStore) acquire(key string) (bool, error) {
	if m.Error != nil {
		return false, m.Error
	}
	if m.Fail {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *MockLockStore) release(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

func (m *MockLockStore) AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return m.acquire("submit:" + sessionID)
}

func (m *MockLockStore) ReleaseSubmitLock(ctx context.Context, sessionID string) error {
	return m.release("submit:" + sessionID)
}

func (m *MockLockStore) AcquireUploadLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return m.acquire("upload:" + sessionID)
}

func (m *MockLockStore) ReleaseUploadLock(ctx context.Context, sessionID string) error {
	return m.release("upload:" + sessionID)
}

// Hold marks a lock as already taken, as if another request were in
// flight.
func (m *MockLockStore) Hold(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[key] = true
}
