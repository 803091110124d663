package credentials

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"vkbackup/pkg/config"
)

// Manager stores tokens in the first store that accepts them and reads from
// the first store that has them: keychain, then encrypted file, then env.
type Manager struct {
	stores []Store
}

// NewManager builds a manager with the keychain (when usable), an encrypted
// file under the XDG config directory and the environment.
func NewManager() (*Manager, error) {
	var stores []Store

	if k, err := NewKeyringStore(); err == nil {
		stores = append(stores, k)
	}

	path, err := xdg.ConfigFile(filepath.Join(config.AppName, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials path: %w", err)
	}
	encrypted, err := NewEncryptedFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encrypted, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores builds a manager over explicit stores
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}

// Store saves token under name
func (m *Manager) Store(name, token string) error {
	name = strings.TrimSpace(name)
	token = strings.TrimSpace(token)
	if name == "" {
		return errors.New("credential name is required")
	}
	if token == "" {
		return errors.New("token is required")
	}

	cred := &Credential{Name: name, Token: token, LastModified: time.Now()}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(cred); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets the credential from the first store that has it
func (m *Manager) Retrieve(name string) (*Credential, error) {
	for _, store := range m.stores {
		if cred, err := store.Retrieve(name); err == nil && cred != nil {
			return cred, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
}

// Token returns only the token value, or "" when nothing is stored
func (m *Manager) Token(name string) string {
	cred, err := m.Retrieve(name)
	if err != nil {
		return ""
	}
	return cred.Token
}

// Delete removes the credential from every store that has it
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrCredentialsNotFound) && !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
}
