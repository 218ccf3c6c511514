// Package store persists users, conversations, saved articles and analyses in Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mohammad-safakhou/newsdesk/models"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

type Store struct {
	DB *sql.DB
}

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewWithDSN opens and pings a Postgres connection pool.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, persist("open", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, persist("ping", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// persist wraps a driver error so callers can match models.ErrPersistence.
func persist(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrPersistence, err)
}

// User operations
func (s *Store) CreateUser(ctx context.Context, email, hash string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1,$2,$3)`, id, email, hash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", fmt.Errorf("email already registered: %w", models.ErrValidation)
		}
		return "", persist("create user", err)
	}
	return id, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return User{}, persist("get user", err)
	}
	return u, nil
}

// Conversation operations
func (s *Store) CreateConversation(ctx context.Context, userID, title string) (models.Conversation, error) {
	c := models.Conversation{ID: uuid.NewString(), UserID: userID, Title: title, Messages: []models.StoredMessage{}}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO conversations (id, user_id, title) VALUES ($1,$2,$3) RETURNING created_at`,
		c.ID, userID, title).Scan(&c.CreatedAt)
	if err != nil {
		return models.Conversation{}, persist("create conversation", err)
	}
	return c, nil
}

// AddMessage appends one message. sourceRefs is stored as a text array.
func (s *Store) AddMessage(ctx context.Context, conversationID string, role models.Role, content string, sourceRefs []string) (models.StoredMessage, error) {
	if sourceRefs == nil {
		sourceRefs = []string{}
	}
	m := models.StoredMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		SourceRefs:     sourceRefs,
	}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, source_refs) VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		m.ID, conversationID, string(role), content, pq.Array(sourceRefs)).Scan(&m.CreatedAt)
	if err != nil {
		return models.StoredMessage{}, persist("add message", err)
	}
	return m, nil
}

// GetConversation loads a conversation owned by userID with its messages in order.
func (s *Store) GetConversation(ctx context.Context, id, userID string) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at FROM conversations WHERE id=$1 AND user_id=$2`, id, userID).
		Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, persist("get conversation", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, role, content, source_refs, created_at FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, persist("list messages", err)
	}
	defer rows.Close()
	c.Messages = []models.StoredMessage{}
	for rows.Next() {
		m := models.StoredMessage{ConversationID: id}
		var role string
		var refs pq.StringArray
		if err := rows.Scan(&m.ID, &role, &m.Content, &refs, &m.CreatedAt); err != nil {
			return nil, persist("scan message", err)
		}
		m.Role = models.Role(role)
		m.SourceRefs = []string(refs)
		if m.SourceRefs == nil {
			m.SourceRefs = []string{}
		}
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, persist("list messages", err)
	}
	return c, nil
}

// Article operations
func (s *Store) CreateArticle(ctx context.Context, a models.Article) (models.Article, error) {
	a.ID = uuid.NewString()
	var published sql.NullTime
	if a.PublishedAt != nil {
		published = sql.NullTime{Time: *a.PublishedAt, Valid: true}
	}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO articles (id, user_id, url, title, source, content, published_at) VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING created_at`,
		a.ID, a.UserID, a.URL, a.Title, a.Source, a.Content, published).Scan(&a.CreatedAt)
	if err != nil {
		return models.Article{}, persist("create article", err)
	}
	return a, nil
}

const articleColumns = `id, user_id, url, title, source, content, published_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (models.Article, error) {
	var a models.Article
	var published sql.NullTime
	if err := row.Scan(&a.ID, &a.UserID, &a.URL, &a.Title, &a.Source, &a.Content, &published, &a.CreatedAt); err != nil {
		return models.Article{}, err
	}
	if published.Valid {
		t := published.Time
		a.PublishedAt = &t
	}
	return a, nil
}

func (s *Store) GetArticle(ctx context.Context, id, userID string) (models.Article, error) {
	a, err := scanArticle(s.DB.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id=$1 AND user_id=$2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, fmt.Errorf("article %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Article{}, persist("get article", err)
	}
	return a, nil
}

// ListArticles returns the user's articles, newest first, without their content.
func (s *Store) ListArticles(ctx context.Context, userID string) ([]models.Article, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, persist("list articles", err)
	}
	defer rows.Close()
	out := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, persist("scan article", err)
		}
		a.Content = ""
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persist("list articles", err)
	}
	return out, nil
}

// UpdateArticleContent fills in fetched text and, when still blank, the title.
func (s *Store) UpdateArticleContent(ctx context.Context, id, title, content string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE articles SET content=$2, title=CASE WHEN title='' THEN $3 ELSE title END WHERE id=$1`,
		id, content, strings.TrimSpace(title))
	if err != nil {
		return persist("update article", err)
	}
	return nil
}

func (s *Store) DeleteArticle(ctx context.Context, id, userID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM articles WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return persist("delete article", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persist("delete article", err)
	}
	if n == 0 {
		return fmt.Errorf("article %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// Analysis kinds stored per article.
const (
	AnalysisSimple = "simple"
	AnalysisDeep   = "deep"
)

// SaveAnalysis stores the latest result of the given kind for an article.
func (s *Store) SaveAnalysis(ctx context.Context, articleID, kind string, result any) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO analyses (article_id, kind, result, updated_at) VALUES ($1,$2,$3,now())
ON CONFLICT (article_id, kind) DO UPDATE SET result=EXCLUDED.result, updated_at=now()`,
		articleID, kind, payload)
	if err != nil {
		return persist("save analysis", err)
	}
	return nil
}
