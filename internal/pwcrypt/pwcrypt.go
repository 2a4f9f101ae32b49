// Пакет pwcrypt — шифрование пароля при входе одноразовым ключом.
// AES-CTR без паддинга, формат "ivhex:cipherhex". Ключ выдаёт сервер
// (GET /api/users/encryption-key) в hex.
package pwcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// KeySize — длина ключа (AES-256).
const KeySize = 32

// Ошибки шифрования.
var (
	ErrEncrypt = errors.New("加密失败")
	ErrDecrypt = errors.New("解密失败")
	ErrFormat  = errors.New("加密数据格式错误")
)

// GenerateKey возвращает случайный ключ в hex.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("генерация ключа: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Encrypt шифрует text ключом keyHex со случайным IV.
func Encrypt(text, keyHex string) (string, error) {
	stream, iv, err := newStream(keyHex, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncrypt, err)
	}
	out := make([]byte, len(text))
	stream.XORKeyStream(out, []byte(text))
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt расшифровывает строку формата "ivhex:cipherhex".
func Decrypt(encrypted, keyHex string) (string, error) {
	ivHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok || strings.Contains(dataHex, ":") {
		return "", ErrFormat
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrFormat
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", ErrFormat
	}

	stream, _, err := newStream(keyHex, iv)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return string(out), nil
}

// ValidFormat проверяет формат без расшифровки.
func ValidFormat(encrypted string) bool {
	ivHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok || len(ivHex) != aes.BlockSize*2 || dataHex == "" {
		return false
	}
	_, errIV := hex.DecodeString(ivHex)
	_, errData := hex.DecodeString(dataHex)
	return errIV == nil && errData == nil
}

// newStream создаёт CTR-поток; iv == nil — сгенерировать новый.
func newStream(keyHex string, iv []byte) (cipher.Stream, []byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, nil, fmt.Errorf("ключ не в hex: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	if iv == nil {
		iv = make([]byte, aes.BlockSize)
		if _, err := rand.Read(iv); err != nil {
			return nil, nil, err
		}
	}
	return cipher.NewCTR(block, iv), iv, nil
}
