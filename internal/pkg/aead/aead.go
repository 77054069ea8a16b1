package aead

import (
	"crypto/cipher"
	"encoding/base64"
	"errors"

	miscreant "github.com/miscreant/miscreant-go"
)

const miscreantNonceSize = 16

var algorithmType = "AES-CMAC-SIV"

var (
	// ErrInvalidValue is an error for an invalid value
	ErrInvalidValue = errors.New("invalid value")
)

// Cipher provides methods to seal and open short string values, used for
// cookie payloads that must be opaque to the browser.
type Cipher interface {
	Encrypt([]byte) ([]byte, error)
	Decrypt([]byte) ([]byte, error)
	Seal(string) (string, error)
	Open(string) (string, error)
}

// MiscreantCipher is an AEAD cipher providing authenticated encryption
// with associated data.
type MiscreantCipher struct {
	aead cipher.AEAD
}

// NewMiscreantCipher returns a new AES cipher for encrypting values
func NewMiscreantCipher(secret []byte) (*MiscreantCipher, error) {
	aead, err := miscreant.NewAEAD(algorithmType, secret, miscreantNonceSize)
	if err != nil {
		return nil, err
	}
	return &MiscreantCipher{
		aead: aead,
	}, nil
}

// GenerateKey wraps miscreant's GenerateKey function
func GenerateKey() []byte {
	return miscreant.GenerateKey(32)
}

// Encrypt encrypts a value, appending the nonce to the returned ciphertext.
func (c *MiscreantCipher) Encrypt(plaintext []byte) (joined []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrInvalidValue
		}
	}()
	nonce := miscreant.GenerateNonce(c.aead)
	ciphertext := c.aead.Seal(nil, nonce, plaintext, nil)

	joined = append(ciphertext[:], nonce[:]...)
	return joined, nil
}

// Decrypt decrypts a value sealed by Encrypt.
func (c *MiscreantCipher) Decrypt(joined []byte) ([]byte, error) {
	if len(joined) <= miscreantNonceSize {
		return nil, ErrInvalidValue
	}
	pivot := len(joined) - miscreantNonceSize
	ciphertext := joined[:pivot]
	nonce := joined[pivot:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// Seal encrypts a string value and base64-encodes the result so it is safe
// to place in a cookie.
func (c *MiscreantCipher) Seal(value string) (string, error) {
	ciphertext, err := c.Encrypt([]byte(value))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Open base64-decodes a sealed string and decrypts it.
func (c *MiscreantCipher) Open(value string) (string, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	plaintext, err := c.Decrypt(ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
