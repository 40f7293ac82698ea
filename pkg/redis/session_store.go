package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// SessionKeyPrefix namespaces sign-in sessions in the shared keyspace
const SessionKeyPrefix = Namespace + ":session:"

// SessionData is what a session id resolves to. Roles and brand ownership
// are looked up again on every request, so only identity is stored.
type SessionData struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore keeps sealed session blobs in redis. Each blob is bound to
// its session id, so a value copied under another key will not open.
type SessionStore struct {
	aead cipher.AEAD
}

var (
	setSessionValue    = Set
	getSessionValue    = Get
	delSessionValue    = Del
	marshalSessionJSON = json.Marshal
)

func sessionKey(sessionID string) string {
	return SessionKeyPrefix + sessionID
}

// NewSessionStore takes a 32 byte AES key encoded as 64 hex chars
func NewSessionStore(encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("session key is not valid hex")
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return &SessionStore{aead: aead}, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("session key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *SessionStore) CreateSession(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	if sessionID == "" || data == nil || data.UserID == uuid.Nil {
		return errors.New("session requires an id and a user")
	}
	payload, err := marshalSessionJSON(data)
	if err != nil {
		return err
	}
	sealed, err := s.seal(sessionID, payload)
	if err != nil {
		return err
	}
	return setSessionValue(ctx, sessionKey(sessionID), sealed, expiration)
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	sealed, err := getSessionValue(ctx, sessionKey(sessionID))
	if errors.Is(err, Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	payload, err := s.open(sessionID, sealed)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	var data SessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return &data, nil
}

// DeleteSession is idempotent; signing out twice is not an error
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return delSessionValue(ctx, sessionKey(sessionID))
}

// seal returns base64(nonce || ciphertext) with the session id as additional data
func (s *SessionStore) seal(sessionID string, plaintext []byte) (string, error) {
	if s.aead == nil {
		return "", errors.New("session store has no key")
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, plaintext, []byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *SessionStore) open(sessionID, sealed string) ([]byte, error) {
	if s.aead == nil {
		return nil, errors.New("session store has no key")
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, err
	}
	n := s.aead.NonceSize()
	if len(raw) < n+s.aead.Overhead() {
		return nil, errors.New("sealed session too short")
	}
	return s.aead.Open(nil, raw[:n], raw[n:], []byte(sessionID))
}
