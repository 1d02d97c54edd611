package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// sealFernet builds a token the way the previous Python tool did.
func sealFernet(t testing.TB, key, pt []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key[16:])
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	pad := aes.BlockSize - len(pt)%aes.BlockSize
	padded := append(append([]byte(nil), pt...), bytes.Repeat([]byte{byte(pad)}, pad)...)
	iv := randBytes(t, aes.BlockSize)

	raw := []byte{fernetVersion}
	raw = binary.BigEndian.AppendUint64(raw, uint64(time.Now().Unix()))
	raw = append(raw, iv...)
	body := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(body, padded)
	raw = append(raw, body...)
	mac := hmac.New(sha256.New, key[:16])
	mac.Write(raw)
	raw = mac.Sum(raw)
	return []byte(base64.URLEncoding.EncodeToString(raw))
}

func TestOpenFernetRoundTrip(t *testing.T) {
	key := randBytes(t, KeySize)
	pt := []byte(`{"type":"service_account"}`)
	tok := sealFernet(t, key, pt)
	if !LooksLikeFernet(tok) {
		t.Fatalf("token %q does not carry the fernet signature", tok[:8])
	}
	got, err := OpenFernet(key, tok)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(pt, got) {
		t.Fatal("plaintext mismatch")
	}
}

func TestOpenFernetRejects(t *testing.T) {
	key := randBytes(t, KeySize)
	tok := sealFernet(t, key, []byte("hello"))

	tests := []struct {
		name  string
		key   []byte
		token []byte
	}{
		{"wrong key", randBytes(t, KeySize), tok},
		{"not base64", key, []byte("gAAAAA!!!!")},
		{"too short", key, []byte(base64.URLEncoding.EncodeToString([]byte{fernetVersion, 0, 0}))},
		{"tampered", key, func() []byte {
			raw, _ := base64.URLEncoding.DecodeString(string(tok))
			raw[len(raw)/2] ^= 0x01
			return []byte(base64.URLEncoding.EncodeToString(raw))
		}()},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := OpenFernet(test.key, test.token); !errors.Is(err, ErrAuthentication) {
				t.Fatalf("expected ErrAuthentication, got %v", err)
			}
		})
	}
}

func TestOpenFernetKeySize(t *testing.T) {
	if _, err := OpenFernet(make([]byte, 16), []byte("gAAAAA")); err == nil {
		t.Fatal("expected error for short key")
	}
}
