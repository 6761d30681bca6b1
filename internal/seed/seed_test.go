package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbfs "github.com/garnizeh/citizenhub/db"
	"github.com/garnizeh/citizenhub/internal/auth"
	dbpkg "github.com/garnizeh/citizenhub/internal/db"
	"github.com/garnizeh/citizenhub/internal/repository/sqlite"
	"github.com/garnizeh/citizenhub/internal/seed"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "seed.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, dbpkg.Migrate(ctx, d, dbfs.Migrations))
	return sqlite.New(d, nil)
}

func TestDefaultFixture(t *testing.T) {
	fx, err := seed.Default()
	require.NoError(t, err)
	assert.NotEmpty(t, fx.People)
	assert.NotEmpty(t, fx.Admins)
	require.NoError(t, fx.Validate())
}

func TestApplyIsIdempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	fx := seed.Fixture{
		People: []seed.PersonSeed{{AadhaarNo: "123456781234", Name: "Asha", Credential: "1234"}},
		Admins: []seed.AdminSeed{{Email: " Admin.Pune@Gov.IN ", Credential: "secret", Location: "Pune"}},
	}

	res, err := seed.Apply(ctx, repo, repo, fx, nil)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{People: 1, Admins: 1}, res)

	p, err := repo.GetPersonByAadhaar(ctx, "123456781234")
	require.NoError(t, err)
	require.NotNil(t, p)
	first := p.ID
	require.NoError(t, auth.VerifyCredential(p.CredentialHash, "1234"))
	assert.NotEqual(t, "1234", p.CredentialHash)

	a, err := repo.GetAdminByEmail(ctx, "admin.pune@gov.in")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Pune", a.Location)

	// rotating the credential keeps the row
	fx.People[0].Credential = "new-secret"
	_, err = seed.Apply(ctx, repo, repo, fx, nil)
	require.NoError(t, err)
	p, err = repo.GetPersonByAadhaar(ctx, "123456781234")
	require.NoError(t, err)
	assert.Equal(t, first, p.ID)
	require.NoError(t, auth.VerifyCredential(p.CredentialHash, "new-secret"))
	assert.ErrorIs(t, auth.VerifyCredential(p.CredentialHash, "1234"), auth.ErrInvalidCredentials)
}

func TestApplyMissingKeepsRotatedCredentials(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	fx := seed.Fixture{
		People: []seed.PersonSeed{{AadhaarNo: "123456781234", Name: "Asha", Credential: "1234"}},
		Admins: []seed.AdminSeed{{Email: "pune@gov.in", Credential: "pune-pw", Location: "Pune"}},
	}
	_, err := seed.Apply(ctx, repo, repo, fx, nil)
	require.NoError(t, err)

	// an operator rotates both credentials
	rotated := seed.Fixture{
		People: []seed.PersonSeed{{AadhaarNo: "123456781234", Name: "Asha", Credential: "rotated"}},
		Admins: []seed.AdminSeed{{Email: "pune@gov.in", Credential: "rotated-pw", Location: "Pune"}},
	}
	_, err = seed.Apply(ctx, repo, repo, rotated, nil)
	require.NoError(t, err)

	// a restart re-applies the original fixture plus a new account
	fx.People = append(fx.People, seed.PersonSeed{AadhaarNo: "987654325678", Name: "Ravi", Credential: "5678"})
	res, err := seed.ApplyMissing(ctx, repo, repo, fx, nil)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{People: 1, Admins: 0, Skipped: 2}, res)

	p, err := repo.GetPersonByAadhaar(ctx, "123456781234")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyCredential(p.CredentialHash, "rotated"))
	a, err := repo.GetAdminByEmail(ctx, "pune@gov.in")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyCredential(a.CredentialHash, "rotated-pw"))

	p, err = repo.GetPersonByAadhaar(ctx, "987654325678")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NoError(t, auth.VerifyCredential(p.CredentialHash, "5678"))
}

func TestValidateRejectsBadEntries(t *testing.T) {
	cases := map[string]seed.Fixture{
		"short aadhaar":      {People: []seed.PersonSeed{{AadhaarNo: "1234", Credential: "x"}}},
		"letters in aadhaar": {People: []seed.PersonSeed{{AadhaarNo: "12345678123a", Credential: "x"}}},
		"empty credential":   {People: []seed.PersonSeed{{AadhaarNo: "123456781234"}}},
		"admin email":        {Admins: []seed.AdminSeed{{Email: "nobody", Credential: "x"}}},
		"admin credential":   {Admins: []seed.AdminSeed{{Email: "a@b.in"}}},
	}
	for name, fx := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, fx.Validate(), seed.ErrInvalidFixture)
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := seed.Decode(strings.NewReader("people:\n  - aadhaar_no: \"123456781234\"\n    password: x\n"))
	assert.ErrorIs(t, err, seed.ErrInvalidFixture)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := "people:\n  - aadhaar_no: \"111122223333\"\n    name: Test\n    credential: \"3333\"\nadmins:\n  - email: a@b.in\n    credential: pw\n    location: Goa\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	fx, err := seed.Load(path)
	require.NoError(t, err)
	require.Len(t, fx.People, 1)
	require.Len(t, fx.Admins, 1)
	assert.Equal(t, "Goa", fx.Admins[0].Location)

	_, err = seed.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
