package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"

	"storefront/internal/domain/service"
)

const (
	keySize   = 32
	nonceSize = 24
)

var errSealedTooShort = errors.New("sealed payload too short")

type secretboxSealer struct {
	key [keySize]byte
}

// NewSecretboxSealer builds a sealer from a 32-byte key encoded as hex or base64.
func NewSecretboxSealer(encodedKey string) (service.CredentialSealer, error) {
	raw, err := decodeKey(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, err
	}

	s := &secretboxSealer{}
	copy(s.key[:], raw)

	return s, nil
}

// NewEphemeralSealer uses a random key. Sealed data does not survive a restart.
func NewEphemeralSealer() (service.CredentialSealer, error) {
	s := &secretboxSealer{}
	if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
		return nil, errors.Wrap(err, "generate sealing key")
	}

	return s, nil
}

func decodeKey(encoded string) ([]byte, error) {
	if raw, err := hex.DecodeString(encoded); err == nil && len(raw) == keySize {
		return raw, nil
	}
	if raw, err := base64.StdEncoding.DecodeString(encoded); err == nil && len(raw) == keySize {
		return raw, nil
	}

	return nil, errors.Errorf("storage key must be %d bytes encoded as hex or base64", keySize)
}

// Seal prefixes the ciphertext with a random nonce.
func (s *secretboxSealer) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}

	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *secretboxSealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, errSealedTooShort
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("sealed payload failed authentication")
	}

	return plain, nil
}
