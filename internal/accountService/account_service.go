package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/clock"
	"auction-marketplace/internal/media"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
)

// Registration is the sign-up form of a new account
type Registration struct {
	UserName       string
	Email          string
	Password       string
	Phone          string
	Address        string
	Role           model.Role
	PaymentMethods *model.PaymentMethods
	ProfileImage   io.Reader
}

// AccountService handles sign-up, login and account queries
type AccountService struct {
	accounts repository.AccountStore
	images   media.Uploader
	tokens   *auth.TokenManager
	clock    clock.Clock
}

// NewAccountService creates a new AccountService instance
func NewAccountService(accounts repository.AccountStore, images media.Uploader, tokens *auth.TokenManager, clk clock.Clock) *AccountService {
	return &AccountService{
		accounts: accounts,
		images:   images,
		tokens:   tokens,
		clock:    clk,
	}
}

// Register validates the form, uploads the profile image and creates the
// account. Only bidders and auctioneers can sign up themselves.
func (s *AccountService) Register(ctx context.Context, r Registration) (model.Account, string, error) {
	if err := validateRegistration(r); err != nil {
		return model.Account{}, "", err
	}
	if r.Role == model.RoleSuperAdmin {
		return model.Account{}, "", fmt.Errorf("service: %w - super admin accounts cannot be registered", auctionerrors.ErrForbidden)
	}

	email := strings.TrimSpace(r.Email)
	_, err := s.accounts.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return model.Account{}, "", fmt.Errorf("service: %w - %s", auctionerrors.ErrAlreadyRegistered, email)
	case !errors.Is(err, auctionerrors.ErrNotFound):
		return model.Account{}, "", fmt.Errorf("service: failed to check email %s: %w", email, err)
	}

	hash, err := auth.HashPassword(r.Password)
	if err != nil {
		return model.Account{}, "", fmt.Errorf("service: %w", err)
	}

	image, err := s.images.Upload(ctx, r.ProfileImage, media.FolderProfiles)
	if err != nil {
		return model.Account{}, "", fmt.Errorf("service: failed to upload profile image: %w", err)
	}

	acct := model.Account{
		ID:             utils.GenerateID(),
		UserName:       strings.TrimSpace(r.UserName),
		Email:          email,
		PasswordHash:   hash,
		Phone:          r.Phone,
		Address:        strings.TrimSpace(r.Address),
		Role:           r.Role,
		ProfileImage:   image,
		PaymentMethods: r.PaymentMethods,
		CreatedAt:      s.clock.Now(),
	}

	// CreateAccount enforces email uniqueness for concurrent sign-ups
	if err := s.accounts.CreateAccount(ctx, acct); err != nil {
		if delErr := s.images.Delete(ctx, image.PublicID); delErr != nil {
			utils.Warn("service: failed to clean up profile image", map[string]any{"public_id": image.PublicID, "error": delErr.Error()})
		}
		return model.Account{}, "", fmt.Errorf("service: failed to create account %s: %w", email, err)
	}

	token, err := s.tokens.Issue(acct)
	if err != nil {
		return model.Account{}, "", fmt.Errorf("service: %w", err)
	}
	return acct, token, nil
}

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

func validatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < 8:
		return fmt.Errorf("service: %w - password must contain at least 8 characters", auctionerrors.ErrInvalidInput)
	case len(password) > maxPasswordBytes:
		return fmt.Errorf("service: %w - password cannot exceed %d bytes", auctionerrors.ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}

func validateRegistration(r Registration) error {
	switch {
	case strings.TrimSpace(r.UserName) == "", strings.TrimSpace(r.Email) == "", r.Phone == "",
		r.Password == "", strings.TrimSpace(r.Address) == "", r.Role == "":
		return fmt.Errorf("service: %w - please fill all required fields", auctionerrors.ErrInvalidInput)
	case r.ProfileImage == nil:
		return fmt.Errorf("service: %w - profile image required", auctionerrors.ErrInvalidInput)
	case !r.Role.Valid():
		return fmt.Errorf("service: %w - unknown role %q", auctionerrors.ErrInvalidInput, r.Role)
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(r.UserName)); n < 3 || n > 40 {
		return fmt.Errorf("service: %w - username must contain 3 to 40 characters", auctionerrors.ErrInvalidInput)
	}
	if err := validatePassword(r.Password); err != nil {
		return err
	}
	if len(r.Phone) != 11 || strings.IndexFunc(r.Phone, func(c rune) bool { return !unicode.IsDigit(c) }) >= 0 {
		return fmt.Errorf("service: %w - phone number must contain exactly 11 digits", auctionerrors.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return fmt.Errorf("service: %w - invalid email address", auctionerrors.ErrInvalidInput)
	}

	if r.Role == model.RoleAuctioneer {
		if r.PaymentMethods == nil || !r.PaymentMethods.Complete() {
			return fmt.Errorf("service: %w - auctioneer payment details are required", auctionerrors.ErrInvalidInput)
		}
		if _, err := mail.ParseAddress(r.PaymentMethods.Paypal.Email); err != nil {
			return fmt.Errorf("service: %w - invalid paypal email", auctionerrors.ErrInvalidInput)
		}
	} else if r.PaymentMethods != nil {
		return fmt.Errorf("service: %w - only auctioneers provide payment details", auctionerrors.ErrInvalidInput)
	}
	return nil
}

// Login checks credentials and issues a session token
func (s *AccountService) Login(ctx context.Context, email, password string) (model.Account, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Account{}, "", fmt.Errorf("service: %w - please fill full form", auctionerrors.ErrInvalidInput)
	}

	acct, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNotFound) {
			return model.Account{}, "", fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
		}
		return model.Account{}, "", fmt.Errorf("service: failed to look up %s: %w", email, err)
	}
	if err := auth.CheckPassword(acct.PasswordHash, password); err != nil {
		return model.Account{}, "", fmt.Errorf("service: %w", err)
	}

	token, err := s.tokens.Issue(acct)
	if err != nil {
		return model.Account{}, "", fmt.Errorf("service: %w", err)
	}
	return acct, token, nil
}

// Profile returns one account
func (s *AccountService) Profile(ctx context.Context, id string) (model.Account, error) {
	if id == "" {
		return model.Account{}, fmt.Errorf("service: %w - empty account ID", auctionerrors.ErrInvalidInput)
	}
	acct, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return model.Account{}, fmt.Errorf("service: failed to get account %s: %w", id, err)
	}
	return acct, nil
}

// Leaderboard returns the accounts that have spent money, biggest spender first
func (s *AccountService) Leaderboard(ctx context.Context) ([]model.Account, error) {
	all, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list accounts: %w", err)
	}

	board := make([]model.Account, 0, len(all))
	for _, a := range all {
		if a.MoneySpent.IsPositive() {
			board = append(board, a)
		}
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].MoneySpent.GreaterThan(board[j].MoneySpent)
	})
	return board, nil
}

// EnsureSuperAdmin creates the super admin account on first start. An
// existing account with the same email is left untouched.
func (s *AccountService) EnsureSuperAdmin(ctx context.Context, userName, email, password string) (model.Account, error) {
	existing, err := s.accounts.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != model.RoleSuperAdmin {
			return model.Account{}, fmt.Errorf("service: %w - %s is registered as %s", auctionerrors.ErrAlreadyRegistered, email, existing.Role)
		}
		return existing, nil
	case !errors.Is(err, auctionerrors.ErrNotFound):
		return model.Account{}, fmt.Errorf("service: failed to look up %s: %w", email, err)
	}

	if err := validatePassword(password); err != nil {
		return model.Account{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.Account{}, fmt.Errorf("service: %w", err)
	}

	acct := model.Account{
		ID:           utils.GenerateID(),
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.accounts.CreateAccount(ctx, acct); err != nil {
		return model.Account{}, fmt.Errorf("service: failed to create super admin %s: %w", email, err)
	}
	return acct, nil
}
