// Package chat implements the session lifecycle: a fixed ten-turn
// question/answer conversation that is created, driven turn by turn, and
// archived on completion.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawchat-ai/pawchat/internal/storage"
	"github.com/pawchat-ai/pawchat/pkg/types"
)

const (
	collectionSessions = "sessions"
	collectionArchive  = "archive"
)

var (
	// ErrNotFound means no active session exists for the given ID.
	ErrNotFound = errors.New("session not found")

	// ErrNoPendingQuestion means an answer was submitted before any
	// question was issued for the session.
	ErrNoPendingQuestion = errors.New("no pending question for session")
)

// Store persists active sessions and the archive of completed ones.
//
// Complete performs the two-phase move on completion: the archive insert
// happens before the active delete, so a concurrent Get never observes the
// session in neither collection. A session visible in both is the
// post-condition of an interrupted completion; re-running Complete converges.
type Store interface {
	Get(ctx context.Context, id string) (*types.Session, error)
	Put(ctx context.Context, session *types.Session) error
	Delete(ctx context.Context, id string) error

	Archive(ctx context.Context, session types.CompletedSession) error
	GetArchived(ctx context.Context, id string) (*types.CompletedSession, error)

	Complete(ctx context.Context, session *types.Session) error
}

// storageStore is the document-store backed Store.
type storageStore struct {
	docs *storage.Storage
}

// NewStore creates a Store over the given document storage.
func NewStore(docs *storage.Storage) Store {
	return &storageStore{docs: docs}
}

func (s *storageStore) Get(ctx context.Context, id string) (*types.Session, error) {
	var session types.Session
	if err := s.docs.Get(ctx, collectionSessions, id, &session); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

func (s *storageStore) Put(ctx context.Context, session *types.Session) error {
	if err := s.docs.Put(ctx, collectionSessions, session.ID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *storageStore) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, collectionSessions, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *storageStore) Archive(ctx context.Context, session types.CompletedSession) error {
	if err := s.docs.Put(ctx, collectionArchive, session.ID, session); err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}
	return nil
}

func (s *storageStore) GetArchived(ctx context.Context, id string) (*types.CompletedSession, error) {
	var session types.CompletedSession
	if err := s.docs.Get(ctx, collectionArchive, id, &session); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load archived session: %w", err)
	}
	return &session, nil
}

// Complete moves a finished session into the archive. Archive first, delete
// second; either step is safe to repeat after a crash in between.
func (s *storageStore) Complete(ctx context.Context, session *types.Session) error {
	if err := s.Archive(ctx, session.Complete()); err != nil {
		return err
	}
	return s.Delete(ctx, session.ID)
}
