package filerepo

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-elearn-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var _ sessions.Repo = (*FileRepo)(nil)

var errDecrypt = errors.New("unable to decrypt session value")

const (
	keyLength   = 32
	nonceLength = 24
	saltLength  = 16
)

// fileFormat is the on-disk layout. Salt is only present when values are sealed.
type fileFormat struct {
	Salt   string            `json:"salt,omitempty"`
	Values map[string]string `json:"values"`
}

// FileRepo persists session keys to a single JSON file, rewritten atomically on every change.
// With a passphrase, each value is sealed with NaCl secretbox under an scrypt-derived key.
type FileRepo struct {
	path       string
	passphrase string
	salt       []byte
	key        *[keyLength]byte
	values     map[string]string
	lock       sync.Mutex
}

type Option func(*FileRepo)

// WithPassphrase enables at-rest encryption of session values
func WithPassphrase(passphrase string) Option {
	return func(r *FileRepo) {
		r.passphrase = passphrase
	}
}

// New opens (or lazily creates) the session file at path. Stored values that
// cannot be read under the configured passphrase (sealed without one, plaintext
// with one, or sealed under another passphrase) are discarded so the session
// starts anonymous.
func New(path string, options ...Option) (*FileRepo, error) {
	r := &FileRepo{
		path:   path,
		values: make(map[string]string),
	}
	for _, opt := range options {
		opt(r)
	}

	var stored fileFormat
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, errors.Wrap(err, "filerepo.New ReadFile")
	default:
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, errors.Wrap(err, "filerepo.New Unmarshal")
		}
	}

	sealed := stored.Salt != ""
	discard := sealed != (r.passphrase != "") && len(stored.Values) > 0
	if sealed && r.passphrase != "" {
		if r.salt, err = base64.StdEncoding.DecodeString(stored.Salt); err != nil {
			r.salt, discard = nil, true
		}
	}

	if r.passphrase != "" {
		if r.salt == nil {
			r.salt = make([]byte, saltLength)
			if _, err := rand.Read(r.salt); err != nil {
				return nil, errors.Wrap(err, "filerepo.New rand.Read")
			}
		}
		if r.key, err = deriveKey(r.passphrase, r.salt); err != nil {
			return nil, err
		}
	}

	if !discard && r.key != nil {
		for _, v := range stored.Values {
			if _, err := r.open(v); err != nil {
				discard = true
				break
			}
		}
	}

	if discard {
		log.Warn().Str("path", path).Msg("session file does not match the passphrase setting, starting anonymous")
		if err := r.flush(); err != nil {
			return nil, err
		}
		return r, nil
	}
	if stored.Values != nil {
		r.values = stored.Values
	}
	return r, nil
}

func (r *FileRepo) Get(_ context.Context, key string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	v, ok := r.values[key]
	if !ok {
		return "", sessions.ErrKeyNotFound
	}
	if r.key == nil {
		return v, nil
	}
	plain, err := r.open(v)
	if err != nil {
		return "", sessions.ErrKeyNotFound
	}
	return plain, nil
}

func (r *FileRepo) Set(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.key != nil {
		sealed, err := r.seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	r.values[key] = value
	return r.flush()
}

func (r *FileRepo) Delete(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	changed := false
	for _, key := range keys {
		if _, ok := r.values[key]; ok {
			delete(r.values, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.flush()
}

func (r *FileRepo) flush() error {
	f := fileFormat{Values: r.values}
	if r.key != nil {
		f.Salt = base64.StdEncoding.EncodeToString(r.salt)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "FileRepo.flush Marshal")
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "FileRepo.flush MkdirAll")
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "FileRepo.flush WriteFile")
	}
	return errors.Wrap(os.Rename(tmp, r.path), "FileRepo.flush Rename")
}

func (r *FileRepo) seal(value string) (string, error) {
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", errors.Wrap(err, "FileRepo.seal rand.Read")
	}
	out := secretbox.Seal(nonce[:], []byte(value), &nonce, r.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (r *FileRepo) open(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(raw) < nonceLength {
		return "", errDecrypt
	}
	var nonce [nonceLength]byte
	copy(nonce[:], raw[:nonceLength])
	plain, ok := secretbox.Open(nil, raw[nonceLength:], &nonce, r.key)
	if !ok {
		return "", errDecrypt
	}
	return string(plain), nil
}

func deriveKey(passphrase string, salt []byte) (*[keyLength]byte, error) {
	derived, err := scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, keyLength)
	if err != nil {
		return nil, errors.Wrap(err, "filerepo deriveKey")
	}
	var key [keyLength]byte
	copy(key[:], derived)
	return &key, nil
}
