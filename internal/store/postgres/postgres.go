// Package postgres reads users and sessions from, and writes conversations to, the
// authorization server's Postgres database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) FindUserByToken(ctx context.Context, accessToken string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `
		select u.id, coalesce(u.name, ''), coalesce(u.email, ''), coalesce(u.image, '')
		from "user" u
		join "session" s on s."userId" = u.id
		where s.token = $1 and s."expiresAt" > now()
		limit 1
	`, accessToken).Scan(&u.ID, &u.Name, &u.Email, &u.Image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrSessionNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}
