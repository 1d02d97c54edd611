package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

const (
	fernetVersion   = 0x80
	fernetTSSize    = 8
	fernetIVSize    = aes.BlockSize
	fernetMacSize   = sha256.Size
	fernetHeadSize  = 1 + fernetTSSize + fernetIVSize
	fernetMinSize   = fernetHeadSize + aes.BlockSize + fernetMacSize
	fernetKeyHalf   = 16
	fernetTokenHead = "gAAAAA"
)

var errFernetKeySize = errors.New("crypto: fernet key must be 32 bytes")

// LooksLikeFernet reports whether b starts like a base64url Fernet token.
func LooksLikeFernet(b []byte) bool {
	return bytes.HasPrefix(b, []byte(fernetTokenHead))
}

// OpenFernet verifies and decrypts a base64url Fernet token. The first half
// of key signs (HMAC-SHA256), the second half encrypts (AES-128-CBC).
// Token age is not checked.
func OpenFernet(key, token []byte) ([]byte, error) {
	if len(key) != 2*fernetKeyHalf {
		return nil, errFernetKeySize
	}
	raw := make([]byte, base64.URLEncoding.DecodedLen(len(token)))
	n, err := base64.URLEncoding.Decode(raw, bytes.TrimSpace(token))
	if err != nil {
		return nil, ErrAuthentication
	}
	raw = raw[:n]
	if len(raw) < fernetMinSize || (len(raw)-fernetHeadSize-fernetMacSize)%aes.BlockSize != 0 {
		return nil, ErrAuthentication
	}
	if raw[0] != fernetVersion {
		return nil, ErrAuthentication
	}

	signKey := key[:fernetKeyHalf]
	encKey := key[fernetKeyHalf:]

	macStart := len(raw) - fernetMacSize
	mac := hmac.New(sha256.New, signKey)
	mac.Write(raw[:macStart])
	if subtle.ConstantTimeCompare(mac.Sum(nil), raw[macStart:]) != 1 {
		return nil, ErrAuthentication
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	iv := raw[1+fernetTSSize : fernetHeadSize]
	body := raw[fernetHeadSize:macStart]
	pt := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, body)
	return unpadPKCS7(pt)
}

func unpadPKCS7(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrAuthentication
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(b) {
		return nil, ErrAuthentication
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, ErrAuthentication
		}
	}
	return b[:len(b)-pad], nil
}
