package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweetshop/internal/events"
	"sweetshop/internal/hash"
	"sweetshop/internal/logging"
	"sweetshop/internal/models"
	"sweetshop/internal/repo"
	"sweetshop/internal/tokens"
)

var ErrInvalidCredentials = errors.New("incorrect username or password")

type AuthService struct {
	Repo      *repo.GormRepo
	Tokens    *tokens.Service
	Producer  *events.Producer
	AccessTTL time.Duration
}

func (s *AuthService) publish(ctx context.Context, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, events.TopicUserEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", events.TopicUserEvents, "error", err)
	}
}

// Register creates a user with the given role, defaulting to customer.
// A username or email already taken returns repo.ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if _, err := s.Repo.FindUserByUsernameOrEmail(ctx, username, email); err == nil {
		l.Warn("register_conflict", "username", username)
		return nil, repo.ErrConflict
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	if role == "" {
		role = models.RoleCustomer
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			l.Warn("register_conflict", "username", username)
		} else {
			l.Error("register_error", "error", err)
		}
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	l.Info("register_success", "username", user.Username, "role", user.Role)
	return &user, nil
}

// Login checks the password and issues a bearer token carrying the username.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown username")
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password")
		return "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.Username, s.AccessTTL)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign token", "error", err)
		return "", err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_success")
	return token, nil
}
