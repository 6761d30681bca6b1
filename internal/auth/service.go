package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/garnizeh/citizenhub/pkg/repository"
)

// Service authenticates citizens and admins against stored credential digests.
type Service struct {
	people repository.PersonRepo
	admins repository.AdminRepo
	tokens *Tokens
	logger *slog.Logger
}

func NewService(people repository.PersonRepo, admins repository.AdminRepo, tokens *Tokens, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{people: people, admins: admins, tokens: tokens, logger: logger}
}

// Tokens exposes the issuer used to verify bearer tokens.
func (s *Service) Tokens() *Tokens { return s.tokens }

// LoginCitizen verifies an Aadhaar number and credential and issues a citizen token.
func (s *Service) LoginCitizen(ctx context.Context, aadhaarNo, credential string) (string, Identity, error) {
	aadhaarNo = strings.TrimSpace(aadhaarNo)
	if aadhaarNo == "" || credential == "" {
		return "", Identity{}, ErrInvalidCredentials
	}

	person, err := s.people.GetPersonByAadhaar(ctx, aadhaarNo)
	if err != nil {
		return "", Identity{}, err
	}
	hash := ""
	if person != nil {
		hash = person.CredentialHash
	}
	if err := VerifyCredential(hash, credential); err != nil {
		s.logger.Info("citizen login rejected")
		return "", Identity{}, err
	}
	return s.tokens.Issue(person.AadhaarNo, RoleCitizen)
}

// LoginAdmin verifies an admin email and credential and issues an admin token.
func (s *Service) LoginAdmin(ctx context.Context, email, credential string) (string, Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || credential == "" {
		return "", Identity{}, ErrInvalidCredentials
	}

	admin, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		return "", Identity{}, err
	}
	hash := ""
	if admin != nil {
		hash = admin.CredentialHash
	}
	if err := VerifyCredential(hash, credential); err != nil {
		s.logger.Info("admin login rejected")
		return "", Identity{}, err
	}
	return s.tokens.Issue(admin.Email, RoleAdmin)
}
