package credentials

import (
	"os"
	"strings"
	"time"

	"vkbackup/pkg/config"
)

// EnvironmentStore reads tokens from VKBACKUP_<NAME>_TOKEN variables.
// It is read-only.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// EnvVar returns the variable name consulted for a credential
func EnvVar(name string) string {
	return config.EnvPrefix + strings.ToUpper(name) + "_TOKEN"
}

func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	if name == "" {
		return nil, ErrInvalidCredentials
	}
	token := os.Getenv(EnvVar(name))
	if token == "" {
		return nil, ErrCredentialsNotFound
	}
	return &Credential{Name: name, Token: token, LastModified: time.Now()}, nil
}

func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(name string) bool {
	return name != "" && os.Getenv(EnvVar(name)) != ""
}
