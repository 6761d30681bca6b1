// Package seed loads citizen and admin accounts from YAML fixtures and upserts
// them with bcrypt-hashed credentials. Apply run twice leaves one row per
// account with the latest credential; ApplyMissing only fills gaps.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	dbfs "github.com/garnizeh/citizenhub/db"
	"github.com/garnizeh/citizenhub/internal/auth"
	"github.com/garnizeh/citizenhub/internal/models"
	"github.com/garnizeh/citizenhub/pkg/repository"
)

var ErrInvalidFixture = errors.New("invalid seed fixture")

type PersonSeed struct {
	AadhaarNo  string `yaml:"aadhaar_no"`
	Name       string `yaml:"name"`
	Credential string `yaml:"credential"`
}

type AdminSeed struct {
	Email      string `yaml:"email"`
	Credential string `yaml:"credential"`
	Location   string `yaml:"location"`
}

// Fixture is the content of one or more seed files.
type Fixture struct {
	People []PersonSeed `yaml:"people"`
	Admins []AdminSeed  `yaml:"admins"`
}

// Result counts the accounts written, and those left alone by ApplyMissing.
type Result struct {
	People  int
	Admins  int
	Skipped int
}

// Decode reads a fixture document. Unknown keys are rejected.
func Decode(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return fx, nil
}

// Default returns the fixtures embedded in the binary.
func Default() (Fixture, error) {
	var fx Fixture
	files, err := fs.Glob(dbfs.SeedFiles, "seed/*.yaml")
	if err != nil {
		return Fixture{}, err
	}
	for _, name := range files {
		b, err := fs.ReadFile(dbfs.SeedFiles, name)
		if err != nil {
			return Fixture{}, err
		}
		part, err := Decode(bytes.NewReader(b))
		if err != nil {
			return Fixture{}, fmt.Errorf("%s: %w", name, err)
		}
		fx.People = append(fx.People, part.People...)
		fx.Admins = append(fx.Admins, part.Admins...)
	}
	return fx, nil
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, err
	}
	defer f.Close()
	return Decode(f)
}

func validAadhaar(s string) bool {
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validate checks every entry before anything is written.
func (fx Fixture) Validate() error {
	for i, p := range fx.People {
		if !validAadhaar(p.AadhaarNo) {
			return fmt.Errorf("%w: people[%d]: aadhaar_no must be 12 digits", ErrInvalidFixture, i)
		}
		if p.Credential == "" {
			return fmt.Errorf("%w: people[%d]: credential is required", ErrInvalidFixture, i)
		}
	}
	for i, a := range fx.Admins {
		if !strings.Contains(a.Email, "@") {
			return fmt.Errorf("%w: admins[%d]: email is required", ErrInvalidFixture, i)
		}
		if a.Credential == "" {
			return fmt.Errorf("%w: admins[%d]: credential is required", ErrInvalidFixture, i)
		}
	}
	return nil
}

// Apply hashes and upserts every account in fx. Existing accounts get the
// fixture's credential.
func Apply(ctx context.Context, people repository.PersonRepo, admins repository.AdminRepo, fx Fixture, logger *slog.Logger) (Result, error) {
	return apply(ctx, people, admins, fx, logger, false)
}

// ApplyMissing creates the accounts in fx that do not exist yet and leaves
// existing ones, including rotated credentials, untouched.
func ApplyMissing(ctx context.Context, people repository.PersonRepo, admins repository.AdminRepo, fx Fixture, logger *slog.Logger) (Result, error) {
	return apply(ctx, people, admins, fx, logger, true)
}

func apply(ctx context.Context, people repository.PersonRepo, admins repository.AdminRepo, fx Fixture, logger *slog.Logger, onlyMissing bool) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fx.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	for _, p := range fx.People {
		if onlyMissing {
			existing, err := people.GetPersonByAadhaar(ctx, p.AadhaarNo)
			if err != nil {
				return res, fmt.Errorf("look up person: %w", err)
			}
			if existing != nil {
				res.Skipped++
				continue
			}
		}
		hash, err := auth.HashCredential(p.Credential)
		if err != nil {
			return res, fmt.Errorf("hash credential for %s: %w", p.AadhaarNo, err)
		}
		person := &models.Person{AadhaarNo: p.AadhaarNo, Name: strings.TrimSpace(p.Name), CredentialHash: hash}
		if _, err := people.UpsertPerson(ctx, person); err != nil {
			return res, fmt.Errorf("upsert person: %w", err)
		}
		res.People++
	}
	for _, a := range fx.Admins {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		if onlyMissing {
			existing, err := admins.GetAdminByEmail(ctx, email)
			if err != nil {
				return res, fmt.Errorf("look up admin: %w", err)
			}
			if existing != nil {
				res.Skipped++
				continue
			}
		}
		hash, err := auth.HashCredential(a.Credential)
		if err != nil {
			return res, fmt.Errorf("hash admin credential: %w", err)
		}
		admin := &models.Admin{
			Email:          email,
			CredentialHash: hash,
			Location:       strings.TrimSpace(a.Location),
		}
		if _, err := admins.UpsertAdmin(ctx, admin); err != nil {
			return res, fmt.Errorf("upsert admin: %w", err)
		}
		res.Admins++
	}
	logger.Info("seed applied", "people", res.People, "admins", res.Admins, "skipped", res.Skipped)
	return res, nil
}

// Load returns the fixture at path, or the embedded fixtures when path is empty.
func Load(path string) (Fixture, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
