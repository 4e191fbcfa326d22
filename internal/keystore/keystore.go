// Package keystore persists the demo service's named signing keys in
// PostgreSQL.
//
// This is supporting infrastructure for the HTTP service only - the signing
// engine treats keys as opaque caller inputs and never reads the store.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/information-sharing-networks/jws-demo/internal/keys"
)

// ErrKeyNotFound is returned when no key matches the requested kid.
var ErrKeyNotFound = errors.New("signing key not found")

// ErrDuplicateKid is returned when a key with the same kid already exists.
var ErrDuplicateKid = errors.New("signing key with this kid already exists")

// SigningKey is a stored signing key.
type SigningKey struct {
	ID        uuid.UUID
	Kid       string
	Algorithm string

	// Material is the PKCS#8 PEM for asymmetric keys or the raw shared
	// secret for HS* keys.
	Material []byte

	Active    bool
	CreatedAt time.Time
}

// PrivateKey converts the stored material to the key type the signing engine
// expects for this key's algorithm.
func (k SigningKey) PrivateKey() (any, error) {
	if keys.IsHMACAlgorithm(k.Algorithm) {
		return k.Material, nil
	}
	return keys.ParsePrivateKeyPEM(k.Material)
}

// PublicKey returns the public half of an asymmetric key.
// HS* keys have no public half and return an error.
func (k SigningKey) PublicKey() (any, error) {
	if keys.IsHMACAlgorithm(k.Algorithm) {
		return nil, fmt.Errorf("%s keys use a shared secret and have no public key", k.Algorithm)
	}

	privateKey, err := keys.ParsePrivateKeyPEM(k.Material)
	if err != nil {
		return nil, err
	}
	return keys.PublicKeyOf(privateKey)
}

// Store provides access to the signing_keys table.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new signing key.
func (s *Store) Create(ctx context.Context, kid, algorithm string, material []byte) (SigningKey, error) {
	var key SigningKey

	err := s.pool.QueryRow(ctx,
		`INSERT INTO signing_keys (kid, algorithm, material)
		 VALUES ($1, $2, $3)
		 RETURNING id, kid, algorithm, material, active, created_at`,
		kid, algorithm, material,
	).Scan(&key.ID, &key.Kid, &key.Algorithm, &key.Material, &key.Active, &key.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return SigningKey{}, ErrDuplicateKid
		}
		return SigningKey{}, fmt.Errorf("failed to create signing key: %w", err)
	}

	return key, nil
}

// GetByKid returns the key with the given kid, active or not.
func (s *Store) GetByKid(ctx context.Context, kid string) (SigningKey, error) {
	var key SigningKey

	err := s.pool.QueryRow(ctx,
		`SELECT id, kid, algorithm, material, active, created_at
		 FROM signing_keys
		 WHERE kid = $1`,
		kid,
	).Scan(&key.ID, &key.Kid, &key.Algorithm, &key.Material, &key.Active, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SigningKey{}, ErrKeyNotFound
		}
		return SigningKey{}, fmt.Errorf("failed to get signing key: %w", err)
	}

	return key, nil
}

// ListActive returns every active key, newest first.
func (s *Store) ListActive(ctx context.Context) ([]SigningKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kid, algorithm, material, active, created_at
		 FROM signing_keys
		 WHERE active
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list signing keys: %w", err)
	}
	defer rows.Close()

	var result []SigningKey
	for rows.Next() {
		var key SigningKey
		if err := rows.Scan(&key.ID, &key.Kid, &key.Algorithm, &key.Material, &key.Active, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signing key: %w", err)
		}
		result = append(result, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signing keys: %w", err)
	}

	return result, nil
}

// Deactivate marks a key as inactive (key rotation - old signatures remain
// verifiable while the key stops being offered for signing).
func (s *Store) Deactivate(ctx context.Context, kid string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE signing_keys SET active = FALSE WHERE kid = $1`,
		kid,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate signing key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}

	return nil
}

// IsDatabaseRunning is used by the readiness probe.
func (s *Store) IsDatabaseRunning(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
