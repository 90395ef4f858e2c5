package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/tracing"
	"vidhub/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userService struct {
	users   ports.UserRepository
	media   ports.MediaStore
	auth    AuthService
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger
}

func NewUserService(
	users ports.UserRepository,
	media ports.MediaStore,
	auth AuthService,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.UserService {
	return &userService{
		users:   users,
		media:   media,
		auth:    auth,
		metrics: metricsOrNoop(metrics),
		logger:  logger,
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Signup(ctx context.Context, in ports.SignupInput) (user *domain.User, err error) {
	ctx, span := tracing.TraceService(ctx, "user.signup")
	defer func() {
		s.metrics.RecordAction(ports.ActionSignup, outcomeOf(err))
		tracing.End(span, err)
	}()

	in.Email = NormalizeEmail(in.Email)
	in.ChannelName = strings.TrimSpace(in.ChannelName)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateSignup(in); err != nil {
		return nil, err
	}

	// Reject a taken email before paying for the avatar upload.
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	logo, err := s.media.Upload(ctx, domain.MediaImage, *in.Logo)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:                 domain.UserID(uuid.NewString()),
		ChannelName:        in.ChannelName,
		Email:              in.Email,
		Phone:              in.Phone,
		PasswordHash:       hash,
		Logo:               logo,
		SubscriberBy:       []domain.UserID{},
		SubscribedChannels: []domain.UserID{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if releaseErr := s.media.Release(ctx, domain.MediaImage, logo.Handle); releaseErr != nil {
			s.logger.Warnw("failed to release avatar after signup failure",
				"handle", logo.Handle,
				"error", releaseErr,
			)
		}
		return nil, err
	}

	s.logger.Infow("user signed up", "user_id", user.ID)
	return user, nil
}

func validateSignup(in ports.SignupInput) error {
	if err := validation.ValidateChannelName(in.ChannelName); err != nil {
		return domain.NewValidationError("channelName", err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return domain.NewValidationError("email", err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return domain.NewValidationError("password", err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return domain.NewValidationError("phone", err.Error())
	}
	if in.Logo == nil || in.Logo.Body == nil {
		return domain.NewValidationError("logo", "logo is required")
	}
	return nil
}

func (s *userService) Login(ctx context.Context, email, password string) (result *ports.LoginResult, err error) {
	ctx, span := tracing.TraceService(ctx, "user.login")
	defer func() {
		s.metrics.RecordAction(ports.ActionLogin, outcomeOf(err))
		tracing.End(span, err)
	}()

	email = NormalizeEmail(email)
	if err := validation.ValidateNonEmptyString(email, "email"); err != nil {
		return nil, domain.NewValidationError("email", err.Error())
	}
	if err := validation.ValidateNonEmptyString(password, "password"); err != nil {
		return nil, domain.NewValidationError("password", err.Error())
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{User: user, Token: token}, nil
}

func (s *userService) GetProfile(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) Subscribe(ctx context.Context, subscriber, target domain.UserID) (*ports.SubscriptionResult, error) {
	return s.changeSubscription(ctx, ports.ActionSubscribe, subscriber, target, domain.Subscribe)
}

func (s *userService) Unsubscribe(ctx context.Context, subscriber, target domain.UserID) (*ports.SubscriptionResult, error) {
	return s.changeSubscription(ctx, ports.ActionUnsubscribe, subscriber, target, domain.Unsubscribe)
}

// changeSubscription updates both users in one store mutation so the
// subscriber's channel list and the target's subscriber list stay mirrored.
func (s *userService) changeSubscription(
	ctx context.Context,
	action string,
	subscriber, target domain.UserID,
	rule func(subscriber, target *domain.User) error,
) (result *ports.SubscriptionResult, err error) {
	ctx, span := tracing.TraceService(ctx, "user."+action,
		tracing.UserIDKey.String(string(subscriber)),
	)
	defer func() {
		s.metrics.RecordAction(action, outcomeOf(err))
		tracing.End(span, err)
	}()

	if subscriber == target {
		return nil, domain.ErrSelfSubscription
	}

	a, b, err := s.users.UpdatePair(ctx, subscriber, target, func(a, b *domain.User) error {
		if err := rule(a, b); err != nil {
			return err
		}
		now := time.Now().UTC()
		a.UpdatedAt, b.UpdatedAt = now, now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ports.SubscriptionResult{Subscriber: a, Target: b}, nil
}
