package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/jturner/defence-radar/internal/models"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidCreds = errors.New("invalid credentials")
	ErrInvalidTier  = errors.New("unknown tier")
	ErrUserNotFound = errors.New("user not found")

	jwtSecretOnce    sync.Once
	jwtSecretRuntime []byte
	jwtSecretErr     error
)

func jwtSecretFromEnv() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if secret != "" {
			jwtSecretRuntime = []byte(secret)
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			jwtSecretErr = fmt.Errorf("failed to generate JWT fallback secret: %w", err)
			return
		}

		jwtSecretRuntime = []byte(base64.RawURLEncoding.EncodeToString(buf))
		log.Print("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	if len(jwtSecretRuntime) == 0 {
		return nil, errors.New("JWT secret unavailable")
	}

	return jwtSecretRuntime, nil
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	var user User
	err = s.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, subscription_tier, created_at
	`, req.Email, string(hash)).Scan(&user.ID, &user.Email, &user.SubscriptionTier, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}

	token, err := generateToken(user.ID, user.SubscriptionTier)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.QueryRow(ctx,
		"SELECT id, email, password_hash, subscription_tier, created_at FROM users WHERE email = $1", req.Email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.SubscriptionTier, &user.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCreds
	}

	token, err := generateToken(user.ID, user.SubscriptionTier)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{Token: token, User: user}, nil
}

// SetTier changes a user's subscription tier. Existing tokens keep the old
// tier until they expire; the new tier takes effect on next login.
func (s *Service) SetTier(ctx context.Context, userID uuid.UUID, tier string) error {
	if tier != models.TierFree && tier != models.TierPro {
		return fmt.Errorf("%w %q", ErrInvalidTier, tier)
	}
	tag, err := s.db.Exec(ctx, "UPDATE users SET subscription_tier = $1 WHERE id = $2", tier, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func generateToken(userID uuid.UUID, tier string) (string, error) {
	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"tier": tier,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// Watchlist

func (s *Service) WatchOpportunity(ctx context.Context, userID uuid.UUID, oppID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO watchlist (user_id, opportunity_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, opportunity_id) DO NOTHING
	`, userID, oppID)
	return err
}

func (s *Service) UnwatchOpportunity(ctx context.Context, userID uuid.UUID, oppID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM watchlist
		WHERE user_id = $1 AND opportunity_id = $2
	`, userID, oppID)
	return err
}

// WatchedIDs returns the content hashes a user has on their watchlist,
// newest first. Entries may outlive the feed rows they point at.
func (s *Service) WatchedIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT opportunity_id FROM watchlist
		WHERE user_id = $1
		ORDER BY saved_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
