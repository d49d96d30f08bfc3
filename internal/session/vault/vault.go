// Package vault is the durable home of the cashier session: one file
// holding the bearer token and the serialized profile, written and cleared
// as a unit. The file is AES-GCM sealed with a per-user derived key; this
// is obfuscation against plain-text tokens on disk, not an OS keychain.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

const fileName = "session.dat"

// Record is the unit of persistence. Token and Profile live and die
// together; there is no partial clear.
type Record struct {
	Token   string          `json:"token"`
	Profile json.RawMessage `json:"profile"`
}

type Vault struct {
	path string
}

// New places the vault under the user config dir.
func New() (*Vault, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	dir = filepath.Join(dir, "magpos")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Vault{path: filepath.Join(dir, fileName)}, nil
}

// NewAt uses an explicit file path. Tests use this with t.TempDir.
func NewAt(path string) *Vault {
	return &Vault{path: path}
}

func (v *Vault) Save(rec Record) error {
	plain, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	sealed, err := encrypt(plain)
	if err != nil {
		return err
	}
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, v.path)
}

// Load returns the stored record. ok is false when no session is stored;
// a corrupt or undecryptable file counts as no session.
func (v *Vault) Load() (rec Record, ok bool, err error) {
	sealed, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	plain, err := decrypt(sealed)
	if err != nil {
		return Record{}, false, nil
	}
	if err := json.Unmarshal(plain, &rec); err != nil {
		return Record{}, false, nil
	}
	return rec, rec.Token != "", nil
}

func (v *Vault) Clear() error {
	err := os.Remove(v.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func masterKey() []byte {
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("magpos-%s-%s", runtime.GOOS, user)))
	return hash[:]
}

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("sealed record too short")
	}
	nonce := sealed[:gcm.NonceSize()]
	body := sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
