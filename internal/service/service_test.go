package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/taxava/internal/auth"
	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/seed"
	"github.com/mmynk/taxava/internal/session"
	"github.com/mmynk/taxava/internal/storage/sqlite"
)

type testEnv struct {
	catalog    *catalog.Catalog
	holder     *session.Holder
	jwt        *auth.JWTManager
	auth       *AuthService
	onboarding *OnboardingService
	companies  *CompanyService
	properties *PropertyService
}

// newTestEnv wires every service over the bundled seed data and an
// in-memory overlay.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	seedStore, err := seed.Default()
	require.NoError(t, err)

	cat := catalog.New(seedStore, store)
	holder := session.NewHolder(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		catalog:    cat,
		holder:     holder,
		jwt:        jwtManager,
		auth:       NewAuthService(auth.NewPasswordAuthenticator(cat), jwtManager, holder, cat, logger),
		onboarding: NewOnboardingService(cat, holder),
		companies:  NewCompanyService(cat),
		properties: NewPropertyService(cat),
	}
}

// as returns a context logged in as the given seed or overlay user.
func (e *testEnv) as(t *testing.T, userID int) context.Context {
	t.Helper()
	ctx := context.Background()
	user, err := e.catalog.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, e.holder.Set(ctx, user))
	return session.WithSession(ctx, &session.Session{User: user})
}

func names[T any](records []T, name func(T) string) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = name(r)
	}
	return out
}

func companyName(c models.Company) string  { return c.Name }
func propertyName(p models.Property) string { return p.Name }
