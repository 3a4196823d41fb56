package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStorage correlates a provider transaction reference with the
// user reference that started the session, so a fetched result can be
// tied back to the registering user. Entries live for at most one
// verification attempt window; nothing else is persisted.
//
// Implementations must be safe for concurrent use.
type SessionStorage interface {
	// StoreReference records the user reference under the transaction
	// reference. Storing over an existing entry updates it.
	StoreReference(transactionRef string, userRef string) error

	// RetrieveReference returns the user reference for the transaction
	// reference, or an error when it is unknown.
	RetrieveReference(transactionRef string) (string, error)

	// RemoveReference drops the entry. An absent entry is an error.
	RemoveReference(transactionRef string) error
}

// Sessions are abandoned upstream after a day; mirror that here.
const sessionTTL = 24 * time.Hour

type InMemorySessionStorage struct {
	references map[string]string
	mutex      sync.Mutex
}

func NewInMemorySessionStorage() *InMemorySessionStorage {
	return &InMemorySessionStorage{
		references: make(map[string]string),
	}
}

func (s *InMemorySessionStorage) StoreReference(transactionRef, userRef string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.references[transactionRef] = userRef
	return nil
}

func (s *InMemorySessionStorage) RetrieveReference(transactionRef string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if userRef, ok := s.references[transactionRef]; ok {
		return userRef, nil
	}
	return "", fmt.Errorf("no session stored for %s", transactionRef)
}

func (s *InMemorySessionStorage) RemoveReference(transactionRef string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.references[transactionRef]; !ok {
		return fmt.Errorf("failed to remove session %s, it wasn't there", transactionRef)
	}
	delete(s.references, transactionRef)
	return nil
}

// ------------------------------------------------------------------------------

type RedisSessionStorage struct {
	client    *redis.Client
	namespace string
}

func NewRedisSessionStorage(client *redis.Client, namespace string) *RedisSessionStorage {
	return &RedisSessionStorage{client: client, namespace: namespace}
}

func sessionKey(namespace, transactionRef string) string {
	return fmt.Sprintf("%s:session:%s", namespace, transactionRef)
}

func (s *RedisSessionStorage) StoreReference(transactionRef, userRef string) error {
	ctx := context.Background()
	return s.client.Set(ctx, sessionKey(s.namespace, transactionRef), userRef, sessionTTL).Err()
}

func (s *RedisSessionStorage) RetrieveReference(transactionRef string) (string, error) {
	ctx := context.Background()
	return s.client.Get(ctx, sessionKey(s.namespace, transactionRef)).Result()
}

func (s *RedisSessionStorage) RemoveReference(transactionRef string) error {
	ctx := context.Background()
	return s.client.Del(ctx, sessionKey(s.namespace, transactionRef)).Err()
}
