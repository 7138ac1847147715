package services

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/auth"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/repositories"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/metrics"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/mocks"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/phone"
)

const (
	testPhone = "+15551234567"
	codeTTL   = 10 * time.Minute
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testStack wires the services against SQLite, miniredis and a recording SMS sender
type testStack struct {
	verification *VerificationServiceImpl
	issuer       *SessionIssuerImpl
	sender       *mocks.MockSMSSender
	codes        *repositories.CodeRepositoryImpl
	users        domain.UserRepository
	sessions     domain.SessionRepository
	tokens       *auth.JWTServiceImpl
	clock        *testClock
	metrics      *metrics.Metrics
}

type stackOption func(*VerificationConfig)

func withoutSupersede() stackOption {
	return func(c *VerificationConfig) { c.InvalidatePrevious = false }
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&repositories.DBVerificationCode{}, &repositories.DBUser{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestStack(t *testing.T, opts ...stackOption) *testStack {
	t.Helper()

	clock := &testClock{now: time.Now()}
	db := setupTestDB(t)
	hasher := auth.NewCodeHasher(bcrypt.MinCost)
	normalizer, err := phone.NewNormalizer("1")
	if err != nil {
		t.Fatalf("normalizer: %v", err)
	}

	codes := repositories.NewCodeRepositoryWithClock(db, hasher, clock.Now)
	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(setupTestRedis(t), time.Hour)
	tokens := auth.NewJWTService("0123456789abcdef0123456789abcdef", "otpauth-test", time.Hour)
	sender := mocks.NewMockSMSSender()
	m := metrics.New()

	issuer := NewSessionIssuer(users, sessions, tokens, nil, m, nil, time.Second)
	issuer.now = clock.Now

	cfg := VerificationConfig{
		CodeTTL:            codeTTL,
		InvalidatePrevious: true,
		StorageTimeout:     time.Second,
		DeliveryTimeout:    time.Second,
		Now:                clock.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	verification := NewVerificationService(VerificationDeps{
		Normalizer: normalizer,
		Codes:      codes,
		Hasher:     hasher,
		Sender:     sender,
		Issuer:     issuer,
		Metrics:    m,
	}, cfg)

	return &testStack{
		verification: verification,
		issuer:       issuer,
		sender:       sender,
		codes:        codes,
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		clock:        clock,
		metrics:      m,
	}
}

// mockDeps returns verification dependencies backed entirely by mocks
func mockDeps(t *testing.T) (VerificationDeps, *mocks.MockCodeStore, *mocks.MockSMSSender, *mocks.MockSessionIssuer) {
	t.Helper()
	normalizer, err := phone.NewNormalizer("1")
	if err != nil {
		t.Fatalf("normalizer: %v", err)
	}
	store := mocks.NewMockCodeStore()
	sender := mocks.NewMockSMSSender()
	issuer := mocks.NewMockSessionIssuer()
	return VerificationDeps{
		Normalizer: normalizer,
		Codes:      store,
		Hasher:     auth.NewCodeHasher(bcrypt.MinCost),
		Sender:     sender,
		Issuer:     issuer,
	}, store, sender, issuer
}

func defaultConfig() VerificationConfig {
	return VerificationConfig{
		CodeTTL:            codeTTL,
		InvalidatePrevious: true,
		StorageTimeout:     time.Second,
		DeliveryTimeout:    time.Second,
	}
}
