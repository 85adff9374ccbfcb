package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/oauth2"
)

const encryptionKeyEnv = "SERENITY_ENCRYPTION_KEY"

// getEncryptionKey derives a 32-byte key for AES-256 encryption
func getEncryptionKey() ([]byte, error) {
	envKey := os.Getenv(encryptionKeyEnv)
	if envKey == "" {
		return nil, fmt.Errorf("no encryption key available: set %s", encryptionKeyEnv)
	}
	hash := sha256.Sum256([]byte(envKey))
	return hash[:], nil
}

func newGCM() (cipher.AEAD, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func encryptToken(token string) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, []byte(token), nil), nil
}

func decryptToken(ciphertext []byte) (string, error) {
	gcm, err := newGCM()
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// GetGoogleToken returns the stored token for account, or nil when none exists.
func (d *DB) GetGoogleToken(account string) (*oauth2.Token, error) {
	var accessTokenEnc, refreshTokenEnc []byte
	var tokenType string
	var expiry sql.NullTime

	err := d.QueryRow(`
		SELECT access_token_encrypted, refresh_token_encrypted, token_type, expiry
		FROM google_tokens WHERE account = ?
	`, account).Scan(&accessTokenEnc, &refreshTokenEnc, &tokenType, &expiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get google token: %w", err)
	}

	accessToken, err := decryptToken(accessTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refreshToken, err := decryptToken(refreshTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}
	return token, nil
}

// SaveGoogleToken stores the token for account (upsert).
func (d *DB) SaveGoogleToken(account string, token *oauth2.Token) error {
	accessTokenEnc, err := encryptToken(token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshTokenEnc, err := encryptToken(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		e := token.Expiry.UTC()
		expiry = &e
	}

	_, err = d.Exec(`
		INSERT INTO google_tokens (account, access_token_encrypted, refresh_token_encrypted, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account) DO UPDATE SET
			access_token_encrypted = excluded.access_token_encrypted,
			refresh_token_encrypted = excluded.refresh_token_encrypted,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP
	`, account, accessTokenEnc, refreshTokenEnc, token.TokenType, expiry)
	if err != nil {
		return fmt.Errorf("failed to save google token: %w", err)
	}
	return nil
}

func (d *DB) DeleteGoogleToken(account string) error {
	if _, err := d.Exec(`DELETE FROM google_tokens WHERE account = ?`, account); err != nil {
		return fmt.Errorf("failed to delete google token: %w", err)
	}
	return nil
}

// TokenStore binds the token table to one account.
type TokenStore struct {
	db      *DB
	account string
}

func (d *DB) TokenStore(account string) *TokenStore {
	return &TokenStore{db: d, account: account}
}

func (s *TokenStore) Load() (*oauth2.Token, error) {
	return s.db.GetGoogleToken(s.account)
}

func (s *TokenStore) Save(token *oauth2.Token) error {
	return s.db.SaveGoogleToken(s.account, token)
}
