package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/glimmer-social/backend/internal/auth/domain"
	"github.com/glimmer-social/backend/internal/auth/google"
	authrepo "github.com/glimmer-social/backend/internal/auth/repository"
	"github.com/glimmer-social/backend/internal/common/constants"
	"github.com/glimmer-social/backend/internal/common/crypto"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/jwtverify"
	"github.com/glimmer-social/backend/internal/common/logger"
	"github.com/glimmer-social/backend/internal/common/mail"
	"github.com/glimmer-social/backend/internal/common/storage"
	userdomain "github.com/glimmer-social/backend/internal/user/domain"
	userrepo "github.com/glimmer-social/backend/internal/user/repository"
)

type Service struct {
	users    userrepo.Repository
	tokens   authrepo.TokenRepository
	hasher   crypto.PasswordHasher
	ids      crypto.IDGenerator
	mailer   mail.Mailer
	store    storage.ObjectStore
	verifier google.TokenVerifier
	log      *logger.Logger

	jwtSecret      []byte
	accessTokenTTL time.Duration
	publicBaseURL  string
}

func New(
	users userrepo.Repository,
	tokens authrepo.TokenRepository,
	hasher crypto.PasswordHasher,
	ids crypto.IDGenerator,
	mailer mail.Mailer,
	store storage.ObjectStore,
	verifier google.TokenVerifier,
	log *logger.Logger,
	jwtSecret string,
	accessTokenTTL time.Duration,
	publicBaseURL string,
) *Service {
	return &Service{
		users:          users,
		tokens:         tokens,
		hasher:         hasher,
		ids:            ids,
		mailer:         mailer,
		store:          store,
		verifier:       verifier,
		log:            log,
		jwtSecret:      []byte(jwtSecret),
		accessTokenTTL: accessTokenTTL,
		publicBaseURL:  publicBaseURL,
	}
}

// Register creates an unverified account and mails a one-time code. Only the
// bcrypt hash of the code is stored.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return "", err
	}
	if err := validateEmail(email); err != nil {
		return "", err
	}
	if err := validateRegistrationPassword(password); err != nil {
		return "", err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(err)
	}

	userID, err := s.ids.NewID()
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(err)
	}

	user := &userdomain.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	otp, err := crypto.GenerateOTP()
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(err)
	}
	otpHash, err := s.hasher.Hash(otp)
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(err)
	}
	if err := s.tokens.UpsertVerificationToken(ctx, userID, otpHash); err != nil {
		return "", err
	}

	if err := s.mailer.Send(ctx, email, "Verify your account",
		fmt.Sprintf("Hi %s, your verification code is %s.", username, otp)); err != nil {
		s.log.Errorf("failed to send verification mail user_id=%s: %v", userID, err)
	}

	s.log.Infof("registered user user_id=%s username=%s", userID, username)
	return userID, nil
}

// VerifyEmail checks the OTP, marks the account verified and logs the user in.
func (s *Service) VerifyEmail(ctx context.Context, userID, otp string) (*domain.AuthResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, commonerrors.ErrAlreadyVerified
	}

	token, err := s.tokens.FindVerificationToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(token.TokenHash, otp); err != nil {
		return nil, commonerrors.ErrInvalidToken
	}

	if err := s.users.SetVerified(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.tokens.DeleteVerificationToken(ctx, userID); err != nil {
		s.log.Errorf("failed to delete used verification token user_id=%s: %v", userID, err)
	}

	if err := s.mailer.Send(ctx, user.Email, "Welcome",
		fmt.Sprintf("Hi %s, your account is verified.", user.Username)); err != nil {
		s.log.Errorf("failed to send welcome mail user_id=%s: %v", userID, err)
	}

	return s.issueAuthResult(user.ID, user.Username)
}

// Login accepts either the email or the username in one field.
func (s *Service) Login(ctx context.Context, emailOrUsername, password string) (*domain.AuthResult, error) {
	lookup := strings.ToLower(strings.TrimSpace(emailOrUsername))
	user, err := s.users.FindByEmailOrUsername(ctx, lookup)
	if err != nil {
		if de, ok := commonerrors.AsDomainError(err); ok && de.Category() == commonerrors.CategoryNotFound {
			return nil, commonerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, commonerrors.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, commonerrors.ErrEmailNotVerified
	}

	return s.issueAuthResult(user.ID, user.Username)
}

// ForgotPassword issues at most one outstanding reset token per user. While
// one is pending the caller is told to retry later.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	if existing, err := s.tokens.FindResetToken(ctx, user.ID); err == nil {
		if time.Since(existing.CreatedAt) < constants.ResetTokenWindow {
			return commonerrors.ErrResetTokenPending
		}
		if err := s.tokens.DeleteResetToken(ctx, user.ID); err != nil {
			return err
		}
	} else if de, ok := commonerrors.AsDomainError(err); !ok || de.Category() != commonerrors.CategoryNotFound {
		return err
	}

	token, err := crypto.GenerateResetToken()
	if err != nil {
		return commonerrors.ErrInternalError.WithCause(err)
	}
	tokenHash, err := s.hasher.Hash(token)
	if err != nil {
		return commonerrors.ErrInternalError.WithCause(err)
	}
	if err := s.tokens.CreateResetToken(ctx, user.ID, tokenHash); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", s.publicBaseURL, user.ID, token)
	if err := s.mailer.Send(ctx, user.Email, "Reset your password",
		fmt.Sprintf("Hi %s, reset your password here: %s (valid for one hour).", user.Username, link)); err != nil {
		s.log.Errorf("failed to send reset mail user_id=%s: %v", user.ID, err)
		return commonerrors.ErrMailDelivery.WithCause(err)
	}
	return nil
}

// ResetPassword consumes the reset token within its one-hour window.
func (s *Service) ResetPassword(ctx context.Context, userID, token, newPassword string) error {
	if err := validateResetPassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	stored, err := s.tokens.FindResetToken(ctx, userID)
	if err != nil {
		return err
	}
	if time.Since(stored.CreatedAt) > constants.ResetTokenWindow {
		if err := s.tokens.DeleteResetToken(ctx, userID); err != nil {
			s.log.Errorf("failed to delete expired reset token user_id=%s: %v", userID, err)
		}
		return commonerrors.ErrInvalidToken
	}
	if err := s.hasher.Compare(stored.TokenHash, token); err != nil {
		return commonerrors.ErrInvalidToken
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return commonerrors.ErrInternalError.WithCause(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}
	if err := s.tokens.DeleteResetToken(ctx, userID); err != nil {
		s.log.Errorf("failed to delete used reset token user_id=%s: %v", userID, err)
	}

	if err := s.mailer.Send(ctx, user.Email, "Password changed",
		fmt.Sprintf("Hi %s, your password was changed.", user.Username)); err != nil {
		s.log.Errorf("failed to send password-change mail user_id=%s: %v", userID, err)
	}
	return nil
}

// GoogleLogin verifies the id token, then either logs in the existing account
// for that email or provisions a new verified one from the Google profile.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*domain.AuthResult, error) {
	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(profile.Email))
	if err == nil {
		return s.issueAuthResult(user.ID, user.Username)
	}
	if de, ok := commonerrors.AsDomainError(err); !ok || de.Category() != commonerrors.CategoryNotFound {
		return nil, err
	}

	userID, err := s.ids.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	created := &userdomain.User{
		ID:         userID,
		Username:   usernameFromEmail(profile.Email, userID),
		Email:      strings.ToLower(profile.Email),
		Name:       profile.Name,
		PictureURL: profile.Picture,
		IsVerified: true,
	}
	if err := s.users.Create(ctx, created); err != nil {
		return nil, err
	}

	s.log.Infof("provisioned user from google login user_id=%s", userID)
	return s.issueAuthResult(created.ID, created.Username)
}

// UpdateProfilePicture stores the upload and persists the returned URL.
func (s *Service) UpdateProfilePicture(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return "", err
	}

	key := userID + path.Ext(filename)
	url, err := s.store.Put(ctx, key, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePicture(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// ProfileUpdate carries the editable profile fields; nil pointers leave the
// current value unchanged.
type ProfileUpdate struct {
	Username *string
	Name     *string
	Email    *string
	Bio      *string
	City     *string
	From     *string
	CoverURL *string

	OldPassword *string
	NewPassword *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*userdomain.PublicView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*update.Username))
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Bio != nil {
		if len(*update.Bio) > constants.BioMaxLength {
			return nil, commonerrors.ErrContentTooLong
		}
		user.Bio = *update.Bio
	}
	if update.City != nil {
		user.City = *update.City
	}
	if update.From != nil {
		user.From = *update.From
	}
	if update.CoverURL != nil {
		user.CoverURL = *update.CoverURL
	}

	if update.NewPassword != nil {
		if update.OldPassword == nil {
			return nil, commonerrors.ErrInvalidCredentials
		}
		if err := s.hasher.Compare(user.PasswordHash, *update.OldPassword); err != nil {
			return nil, commonerrors.ErrInvalidCredentials
		}
		if err := validateRegistrationPassword(*update.NewPassword); err != nil {
			return nil, err
		}
		passwordHash, err := s.hasher.Hash(*update.NewPassword)
		if err != nil {
			return nil, commonerrors.ErrInternalError.WithCause(err)
		}
		if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
			return nil, err
		}
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	view := user.PublicView()
	return &view, nil
}

func (s *Service) issueAuthResult(userID, username string) (*domain.AuthResult, error) {
	token, err := jwtverify.IssueToken(userID, username, s.jwtSecret, s.accessTokenTTL, time.Now())
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}
	return &domain.AuthResult{
		UserID:      userID,
		Username:    username,
		AccessToken: token,
	}, nil
}

func usernameFromEmail(email, userID string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			return r
		}
		return -1
	}, strings.ToLower(local))
	if cleaned == "" {
		cleaned = "user"
	}
	// Suffix with a slice of the id to dodge collisions with existing names.
	suffix := userID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return cleaned + "_" + suffix
}
