package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/taxava/internal/models"
)

// LoadAllUsers returns seed and overlay users merged by ID.
func (c *Catalog) LoadAllUsers(ctx context.Context) ([]models.User, error) {
	local, err := c.users.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return Merge(c.seed.Users(), local), nil
}

// GetUserByID returns the user with the given ID.
func (c *Catalog) GetUserByID(ctx context.Context, id int) (models.User, error) {
	users, err := c.LoadAllUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	u, ok := find(users, id)
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, nil
}

// FindUserByEmail looks a user up by email, ignoring case.
func (c *Catalog) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return c.FindUser(ctx, func(u models.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

// FindUser returns the first merged user accepted by match. Usernames are
// not unique, so callers that know more than one field should match on all
// of them.
func (c *Catalog) FindUser(ctx context.Context, match func(models.User) bool) (models.User, error) {
	users, err := c.LoadAllUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user: %w", ErrNotFound)
}

// CreateUser stores a new user with a freshly allocated ID and the
// onboarding flag cleared. The email must not already be registered.
func (c *Catalog) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	seedUsers := c.seed.Users()
	var created models.User

	_, err := c.users.Update(ctx, func(local []models.User) ([]models.User, error) {
		all := Merge(seedUsers, local)
		for _, u := range all {
			if strings.EqualFold(u.Email, user.Email) {
				return nil, ErrEmailTaken
			}
		}
		created = user
		created.ID = NextID(all)
		created.HasOnboarded = false
		return append(local, created), nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// MarkOnboarded sets the onboarding flag of a user. Seed users are copied
// into the overlay on first change.
func (c *Catalog) MarkOnboarded(ctx context.Context, userID int) (models.User, error) {
	seedUsers := c.seed.Users()
	var updated models.User

	_, err := c.users.Update(ctx, func(local []models.User) ([]models.User, error) {
		u, ok := find(Merge(seedUsers, local), userID)
		if !ok {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		u.HasOnboarded = true
		updated = u
		return upsert(local, u), nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to mark user onboarded: %w", err)
	}
	return updated, nil
}
