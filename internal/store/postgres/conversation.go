package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
)

func (s *Store) CreateConversation(ctx context.Context, userID string, mode domain.Mode, title string) (domain.Conversation, error) {
	if title == "" {
		title = domain.DefaultConversationTitle
	}
	now := time.Now().UTC()
	var c domain.Conversation
	var m string
	err := s.pool.QueryRow(ctx, `
		insert into "conversation" (id, "userId", mode, title, "createdAt", "updatedAt")
		values ($1, $2, $3, $4, $5, $5)
		returning id, "userId", mode, title, "createdAt", "updatedAt"
	`, uuid.NewString(), userID, string(mode), title, now).Scan(
		&c.ID,
		&c.UserID,
		&m,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Conversation{}, err
	}
	c.Mode = domain.Mode(m)
	return c, nil
}

func (s *Store) GetConversation(ctx context.Context, id, userID string) (domain.Conversation, error) {
	var c domain.Conversation
	var m string
	err := s.pool.QueryRow(ctx, `
		select id, "userId", mode, title, "createdAt", "updatedAt"
		from "conversation"
		where id = $1 and "userId" = $2
	`, id, userID).Scan(
		&c.ID,
		&c.UserID,
		&m,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Conversation{}, domain.ErrNotFound
		}
		return domain.Conversation{}, err
	}
	c.Mode = domain.Mode(m)

	msgs, err := s.ListMessages(ctx, c.ID)
	if err != nil {
		return domain.Conversation{}, err
	}
	c.Messages = msgs
	return c, nil
}

func (s *Store) UpdateConversationTitle(ctx context.Context, id, title string) error {
	tag, err := s.pool.Exec(ctx, `
		update "conversation" set title = $2, "updatedAt" = now()
		where id = $1
	`, id, title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) AddMessage(ctx context.Context, conversationID string, role domain.Role, content string) (domain.Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Message{}, err
	}
	defer tx.Rollback(ctx)

	var msg domain.Message
	var r string
	err = tx.QueryRow(ctx, `
		insert into "message" (id, "conversationId", role, content, "createdAt")
		values ($1, $2, $3, $4, now())
		returning id, "conversationId", role, content, "createdAt"
	`, uuid.NewString(), conversationID, string(role), content).Scan(
		&msg.ID,
		&msg.ConversationID,
		&r,
		&msg.Content,
		&msg.CreatedAt,
	)
	if err != nil {
		return domain.Message{}, err
	}
	msg.Role = domain.Role(r)

	if _, err := tx.Exec(ctx, `update "conversation" set "updatedAt" = now() where id = $1`, conversationID); err != nil {
		return domain.Message{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx, `
		select id, "conversationId", role, content, "createdAt"
		from "message"
		where "conversationId" = $1
		order by "createdAt" asc, id asc
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var msg domain.Message
		var r string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &r, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = domain.Role(r)
		out = append(out, msg)
	}
	return out, rows.Err()
}
