package cookies

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"
)

// SafeStoragePasswordEnv overrides the keychain lookup for the Chromium
// "Safe Storage" password.
const SafeStoragePasswordEnv = "SYC_CHROME_SAFE_STORAGE_PASSWORD"

const (
	chromeSalt             = "saltysalt"
	chromeIV               = "                "
	chromeIterationsLinux  = 1
	chromeIterationsDarwin = 1003
	chromeKeyLen           = 16
	// chromeLinuxV10Password is the fixed password Chromium uses on Linux
	// when no secret store is available.
	chromeLinuxV10Password = "peanuts"
)

var (
	errNoChromeKey       = errors.New("no key for encrypted cookie")
	errChromeValueFormat = errors.New("unsupported encrypted cookie format")
)

// vendor identifies the keychain entry of a Chromium-family browser.
type vendor struct {
	service string
	account string
}

func vendorFor(browser string) vendor {
	switch browser {
	case "Chromium":
		return vendor{"Chromium Safe Storage", "Chromium"}
	case "Edge":
		return vendor{"Microsoft Edge Safe Storage", "Microsoft Edge"}
	case "Brave":
		return vendor{"Brave Safe Storage", "Brave"}
	}
	return vendor{"Chrome Safe Storage", "Chrome"}
}

// chromeKeys holds the AES-128-CBC keys for the "v10" and "v11" value
// prefixes. A nil key means values with that prefix cannot be read.
type chromeKeys struct {
	v10 []byte
	v11 []byte
}

func chromeKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(chromeSalt), iterations, chromeKeyLen, sha1.New)
}

// keyringGet is replaced in tests.
var keyringGet = keyring.Get

// loadChromeKeys derives the cookie keys for the given browser. Windows
// stores keys with DPAPI, which is not supported, so no keys are returned
// there.
func loadChromeKeys(browser string, l logger.Logger) chromeKeys {
	password := os.Getenv(SafeStoragePasswordEnv)
	if password == "" && runtime.GOOS != "windows" {
		v := vendorFor(browser)
		pw, err := keyringGet(v.service, v.account)
		if err != nil {
			l.Info("cookies: no %s password in keychain: %v", v.service, err)
		}
		password = strings.TrimSpace(pw)
	}
	switch runtime.GOOS {
	case "darwin":
		if password == "" {
			return chromeKeys{}
		}
		return chromeKeys{v10: chromeKey(password, chromeIterationsDarwin)}
	case "windows":
		return chromeKeys{}
	}
	keys := chromeKeys{v10: chromeKey(chromeLinuxV10Password, chromeIterationsLinux)}
	if password != "" {
		keys.v11 = chromeKey(password, chromeIterationsLinux)
	}
	return keys
}

// decrypt returns the plaintext of an encrypted_value column. Databases
// with meta version 24 or later prefix the plaintext with a SHA-256 of the
// host key, which is removed.
func (k chromeKeys) decrypt(enc []byte, metaVersion int) (string, error) {
	if len(enc) <= 3 {
		return "", errChromeValueFormat
	}
	var key []byte
	switch string(enc[:3]) {
	case "v10":
		key = k.v10
	case "v11":
		key = k.v11
	default:
		return "", errChromeValueFormat
	}
	if key == nil {
		return "", errNoChromeKey
	}
	ct := enc[3:]
	if len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a multiple of the block size", errChromeValueFormat)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, []byte(chromeIV)).CryptBlocks(out, ct)
	out, err = unpad(out)
	if err != nil {
		return "", err
	}
	if metaVersion >= 24 && len(out) >= 32 {
		out = out[32:]
	}
	out = bytes.TrimLeftFunc(out, func(r rune) bool { return r < 0x20 })
	if !utf8.Valid(out) {
		return "", errors.New("decrypted cookie is not valid UTF-8, wrong key?")
	}
	return string(out), nil
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("invalid padding length: %d", n)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("invalid padding bytes")
		}
	}
	return b[:len(b)-n], nil
}
