package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/overlay"
	"github.com/mmynk/taxava/internal/seed"
	"github.com/mmynk/taxava/internal/storage"
	"github.com/mmynk/taxava/internal/storage/sqlite"
)

func newTestCatalog(t *testing.T, s *seed.Store, opts ...overlay.Option) (*Catalog, storage.Store) {
	t.Helper()
	store, err := sqlite.New(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(s, store, opts...), store
}

func ids[T models.Record](records []T) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.RecordID()
	}
	return out
}

func TestGetCompaniesByUserScenario(t *testing.T) {
	s := seed.New(
		[]models.User{{ID: 10, Username: "ten", Email: "ten@gmail.com"}},
		[]models.Company{{ID: 1, Name: "Seed", UserID: 10}},
		nil,
	)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	got, err := cat.GetCompaniesByUser(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(got))

	got, err = cat.GetCompaniesByUser(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetPropertiesByUserScenario(t *testing.T) {
	s := seed.New(
		[]models.User{{ID: 10, Username: "ten", Email: "ten@gmail.com"}},
		[]models.Company{{ID: 1, Name: "Seed", UserID: 10}},
		[]models.Property{{ID: 5, Name: "Five", Type: models.PropertyTypeKos, CompanyID: 1}},
	)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	created, err := cat.CreateProperty(ctx, models.Property{Name: "Six", Type: models.PropertyTypeRuko, CompanyID: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, created.ID)

	got, err := cat.GetPropertiesByUser(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{5, 6}, ids(got))

	got, err = cat.GetPropertiesByUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalOverridesSeedScenario(t *testing.T) {
	s := seed.New(nil, []models.Company{{ID: 1, Name: "Seed", UserID: 10}}, nil)
	cat, store := newTestCatalog(t, s)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyCompanies, []byte(`[{"id":1,"name":"Old","userId":10}]`)))

	all, err := cat.LoadAllCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, "Old", all[0].Name)
}

func TestLoadAllIsIdempotent(t *testing.T) {
	s, err := seed.Default()
	require.NoError(t, err)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	_, err = cat.CreateCompany(ctx, models.Company{Name: "Local", UserID: 1})
	require.NoError(t, err)

	first, err := cat.LoadAllCompanies(ctx)
	require.NoError(t, err)
	second, err := cat.LoadAllCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOwnershipFollowsOverlay(t *testing.T) {
	s := seed.New(
		[]models.User{{ID: 1, Email: "a@gmail.com"}, {ID: 2, Email: "b@gmail.com"}},
		[]models.Company{{ID: 1, Name: "A", UserID: 1}, {ID: 2, Name: "B", UserID: 2}},
		[]models.Property{
			{ID: 1, Name: "p1", CompanyID: 1},
			{ID: 2, Name: "p2", CompanyID: 2},
			{ID: 3, Name: "p3", CompanyID: 1},
		},
	)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	got, err := cat.GetPropertiesByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(got))

	// Moving company 2 to user 1 in the overlay moves its properties too.
	_, err = cat.SaveCompany(ctx, models.Company{ID: 2, Name: "B", UserID: 1})
	require.NoError(t, err)

	got, err = cat.GetPropertiesByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(got))

	got, err = cat.GetPropertiesByUser(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, got)

	byCompany, err := cat.GetPropertiesByCompany(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(byCompany))
}

func TestScopedLookups(t *testing.T) {
	s := seed.New(
		[]models.User{{ID: 1, Email: "a@gmail.com"}, {ID: 2, Email: "b@gmail.com"}},
		[]models.Company{{ID: 1, UserID: 1}, {ID: 2, UserID: 2}},
		[]models.Property{{ID: 1, CompanyID: 1}, {ID: 2, CompanyID: 2}},
	)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	_, err := cat.GetCompanyForUser(ctx, 1, 1)
	assert.NoError(t, err)
	_, err = cat.GetCompanyForUser(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cat.GetCompanyForUser(ctx, 1, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cat.GetPropertyForUser(ctx, 1, 1)
	assert.NoError(t, err)
	_, err = cat.GetPropertyForUser(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cat.GetPropertyForUser(ctx, 1, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUser(t *testing.T) {
	s := seed.New([]models.User{{ID: 4, Username: "seed", Email: "Seed@Gmail.com"}}, nil, nil)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	t.Run("allocates over the merged set", func(t *testing.T) {
		u, err := cat.CreateUser(ctx, models.User{Username: "new", Email: "new@gmail.com", Password: "pw", HasOnboarded: true})
		require.NoError(t, err)
		assert.Equal(t, 5, u.ID)
		assert.False(t, u.HasOnboarded, "new users start without onboarding")

		u2, err := cat.CreateUser(ctx, models.User{Username: "newer", Email: "newer@gmail.com"})
		require.NoError(t, err)
		assert.Equal(t, 6, u2.ID)
	})

	t.Run("rejects a registered email ignoring case", func(t *testing.T) {
		_, err := cat.CreateUser(ctx, models.User{Username: "dup", Email: "seed@gmail.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)

		_, err = cat.CreateUser(ctx, models.User{Username: "dup", Email: "NEW@gmail.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("lookups see local users", func(t *testing.T) {
		u, err := cat.FindUserByEmail(ctx, "NEWER@GMAIL.COM")
		require.NoError(t, err)
		assert.Equal(t, 6, u.ID)

		u, err = cat.FindUser(ctx, func(u models.User) bool { return u.Username == "seed" })
		require.NoError(t, err)
		assert.Equal(t, 4, u.ID)

		_, err = cat.FindUser(ctx, func(u models.User) bool { return u.Username == "nobody" })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMarkOnboarded(t *testing.T) {
	s := seed.New([]models.User{{ID: 1, Username: "seed", Email: "s@gmail.com"}}, nil, nil)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	u, err := cat.MarkOnboarded(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.HasOnboarded)

	all, err := cat.LoadAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "seed user is shadowed, not duplicated")
	assert.True(t, all[0].HasOnboarded)

	_, err = cat.MarkOnboarded(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWritesRejectDanglingReferences(t *testing.T) {
	s := seed.New(
		[]models.User{{ID: 1, Email: "a@gmail.com"}},
		[]models.Company{{ID: 1, UserID: 1}},
		[]models.Property{{ID: 1, CompanyID: 1}},
	)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	var dangling *DanglingReferenceError

	_, err := cat.CreateCompany(ctx, models.Company{Name: "Orphan", UserID: 404})
	require.True(t, errors.As(err, &dangling), "got %v", err)
	assert.Equal(t, "company", dangling.Entity)
	assert.Equal(t, "userId", dangling.Field)
	assert.Equal(t, 404, dangling.ID)

	_, err = cat.SaveCompany(ctx, models.Company{ID: 1, UserID: 404})
	assert.True(t, errors.As(err, &dangling))

	_, err = cat.CreateProperty(ctx, models.Property{Name: "Orphan", CompanyID: 404})
	require.True(t, errors.As(err, &dangling))
	assert.Equal(t, "companyId", dangling.Field)

	_, err = cat.SaveProperty(ctx, models.Property{ID: 1, CompanyID: 404})
	assert.True(t, errors.As(err, &dangling))

	all, err := cat.LoadAllCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "no partial write")
}

func TestSaveMissingRecord(t *testing.T) {
	s := seed.New(
		[]models.User{{ID: 1, Email: "a@gmail.com"}},
		[]models.Company{{ID: 1, UserID: 1}},
		nil,
	)
	cat, _ := newTestCatalog(t, s)
	ctx := context.Background()

	_, err := cat.SaveCompany(ctx, models.Company{ID: 9, UserID: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cat.SaveProperty(ctx, models.Property{ID: 9, CompanyID: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveSeedRecordShadowsIt(t *testing.T) {
	s := seed.New(
		[]models.User{{ID: 1, Email: "a@gmail.com"}},
		[]models.Company{{ID: 1, Name: "Seed", UserID: 1}, {ID: 2, Name: "Other", UserID: 1}},
		nil,
	)
	cat, store := newTestCatalog(t, s)
	ctx := context.Background()

	_, err := cat.SaveCompany(ctx, models.Company{ID: 1, Name: "Edited", UserID: 1})
	require.NoError(t, err)
	_, err = cat.SaveCompany(ctx, models.Company{ID: 1, Name: "Edited again", UserID: 1})
	require.NoError(t, err)

	all, err := cat.LoadAllCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(all), "edited record keeps its seed position")
	assert.Equal(t, "Edited again", all[0].Name)

	local, err := overlay.NewCollection[models.Company](store, storage.KeyCompanies).ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, local, 1, "seed records are not copied into the overlay unless edited")
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	const writers = 10
	s := seed.New(
		[]models.User{{ID: 1, Email: "a@gmail.com"}},
		[]models.Company{{ID: 3, UserID: 1}},
		nil,
	)
	cat, _ := newTestCatalog(t, s, overlay.WithRetries(writers))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]bool)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := cat.CreateCompany(ctx, models.Company{Name: "c", UserID: 1})
			if err != nil {
				t.Errorf("CreateCompany failed: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[c.ID] {
				t.Errorf("duplicate id %d", c.ID)
			}
			seen[c.ID] = true
		}()
	}
	wg.Wait()

	all, err := cat.LoadAllCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers+1)
	assert.Equal(t, writers+4, NextID(all))
}

func TestDanglingReferenceErrorMessage(t *testing.T) {
	err := &DanglingReferenceError{Entity: "property", Field: "companyId", ID: 3}
	assert.Equal(t, "property.companyId references missing record 3", err.Error())
}
