package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
	"github.com/Damian-Sonwa/Academician-hub-sub001/storage/database/inmem"
	"github.com/Damian-Sonwa/Academician-hub-sub001/tests"
)

var ctx = context.Background()

func setup() (*user.Service, user.Repository) {
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return user.NewService(repo, validate), repo
}

func TestService_Create(t *testing.T) {
	svc, repo := setup()
	testutil.CreateUser(t, repo, "Hero", "hero", "hero@test.cd", testutil.Password, nil, true)

	nu := user.NewUser{
		Name:            " Ada Lovelace ",
		Username:        "ADA",
		Email:           "Ada@Test.cd ",
		Password:        testutil.Password,
		PasswordConfirm: testutil.Password,
	}
	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "Ada Lovelace", usr.Name)
	assert.Equal(t, "ada", usr.Username)
	assert.Equal(t, "ada@test.cd", usr.Email)
	assert.Equal(t, user.StudentRoles, usr.Roles)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword(testutil.Password))

	got, err := svc.GetByUsernameOrEmail(ctx, " ADA@test.cd")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	tests := []struct {
		name  string
		nu    user.NewUser
		field string
	}{
		{
			name:  "username taken",
			nu:    user.NewUser{Name: "H", Username: "hero", Password: testutil.Password, PasswordConfirm: testutil.Password},
			field: "username",
		},
		{
			name:  "email taken",
			nu:    user.NewUser{Name: "H", Email: "HERO@test.cd", Password: testutil.Password, PasswordConfirm: testutil.Password},
			field: "email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.nu)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.field, vErr.Fields[0].Field)
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, repo := setup()
	hero := testutil.CreateUser(t, repo, "Hero", "hero", "hero@test.cd", testutil.Password, nil, true)
	king := testutil.CreateUser(t, repo, "King", "king", "king@test.cd", testutil.Password, user.AdminRoles, true)

	hero.Name = "Super Hero"
	updated, err := svc.Update(ctx, hero)
	require.NoError(t, err, "own username and email are fine")
	assert.Equal(t, "Super Hero", updated.Name)
	assert.True(t, updated.UpdatedAt.After(hero.CreatedAt) || updated.UpdatedAt.Equal(hero.CreatedAt))

	king.Username = "hero"
	_, err = svc.Update(ctx, king)
	assert.True(t, core.IsValidationError(err))

	_, err = svc.GetByID(ctx, "unknown")
	assert.Equal(t, user.ErrNotFound, err)
	assert.True(t, core.IsNotFound(err))

	usr, err := svc.SetLastLogin(ctx, hero)
	require.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero())

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_SetPassword(t *testing.T) {
	svc, repo := setup()
	hero := testutil.CreateUser(t, repo, "Hero", "hero", "hero@test.cd", testutil.Password, nil, true)

	_, err := svc.SetPassword(ctx, hero, "short")
	assert.Error(t, err)

	usr, err := svc.SetPassword(ctx, hero, "N3w-P@ssphrase")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("N3w-P@ssphrase"))

	stored, err := svc.GetByID(ctx, hero.ID)
	require.NoError(t, err)
	assert.Error(t, stored.CheckPassword(testutil.Password))
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup()
	hero := testutil.CreateUser(t, repo, "Hero", "hero", "hero@test.cd", testutil.Password, nil, true)
	testutil.CreateUser(t, repo, "N Dog", "ndog", "ndog@test.cd", testutil.Password, nil, false)

	usr, err := svc.Authenticate(ctx, "HERO", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, hero.ID, usr.ID)

	usr, err = svc.Authenticate(ctx, "hero@test.cd", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, hero.ID, usr.ID)

	_, err = svc.Authenticate(ctx, "hero", "wrong")
	assert.Equal(t, user.ErrInvalidCredentials, err)
	_, err = svc.Authenticate(ctx, "nobody", testutil.Password)
	assert.Equal(t, user.ErrInvalidCredentials, err)
	_, err = svc.Authenticate(ctx, "ndog", testutil.Password)
	assert.Equal(t, user.ErrInactive, err)
}
