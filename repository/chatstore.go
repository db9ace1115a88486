package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/driftchat/driftchat-backend/models"
)

// ChatStore is the durable backend of the router: user accounts and their
// persisted active conversation live in postgres, message history in mongo.
type ChatStore struct {
	db       *sql.DB
	messages *mongo.Collection
}

func NewChatStore(db *sql.DB, client *mongo.Client, dbName string) *ChatStore {
	return &ChatStore{
		db:       db,
		messages: client.Database(dbName).Collection("messages"),
	}
}

func (s *ChatStore) AppendMessage(ctx context.Context, chatKey, sender, body string) error {
	_, err := s.messages.InsertOne(ctx, models.StoredMessage{
		ChatKey:   chatKey,
		Sender:    sender,
		Body:      body,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Conversation returns a chat's messages oldest first.
func (s *ChatStore) Conversation(ctx context.Context, chatKey string) ([]models.StoredMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := s.messages.Find(ctx, bson.M{"chat_key": chatKey}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages for %s: %w", chatKey, err)
	}
	defer cur.Close(ctx)

	var out []models.StoredMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages for %s: %w", chatKey, err)
	}
	return out, nil
}

func (s *ChatStore) ActiveConversation(ctx context.Context, username string) (string, error) {
	var target sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT active_conversation FROM users WHERE username = $1", username).Scan(&target)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query active conversation: %w", err)
	}
	return target.String, nil
}

func (s *ChatStore) SaveActiveConversation(ctx context.Context, username, target string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET active_conversation = $2 WHERE username = $1", username, target)
	if err != nil {
		return fmt.Errorf("save active conversation: %w", err)
	}
	return nil
}

func (s *ChatStore) IsUserKnown(ctx context.Context, username string) (bool, error) {
	var known bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&known)
	if err != nil {
		return false, fmt.Errorf("query user existence: %w", err)
	}
	return known, nil
}

func (s *ChatStore) ListKnownUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT username FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
