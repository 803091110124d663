package credentials

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	vkerrors "vkbackup/pkg/errors"
)

// Keys recognised in the token file
const (
	KeySourceToken = "access_token"
	KeyDestToken   = "yandex_token"
)

// Tokens maps a token name to its value. It is read-only once loaded.
type Tokens map[string]string

// Get returns the named token and whether it was present and non-empty
func (t Tokens) Get(name string) (string, bool) {
	v, ok := t[name]
	return v, ok && v != ""
}

// SourceToken returns the VK access token
func (t Tokens) SourceToken() (string, bool) {
	return t.Get(KeySourceToken)
}

// LoadTokenFile reads `name=value` lines from path. Keys and values are
// trimmed and split on the first '='; blank lines are ignored. A missing
// file or a line without '=' is a config error.
func LoadTokenFile(path string) (Tokens, error) {
	const op = "load tokens"

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vkerrors.Config(op, fmt.Sprintf("token file %s not found", path))
		}
		return nil, vkerrors.Wrap(vkerrors.ErrorTypeConfig, op, err)
	}
	defer f.Close()

	tokens := make(Tokens)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, value, found := strings.Cut(line, "=")
		if !found {
			return nil, vkerrors.Config(op, fmt.Sprintf("%s line %d: missing '=' separator", path, lineNo))
		}
		tokens[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, vkerrors.Wrap(vkerrors.ErrorTypeConfig, op, err)
	}

	return tokens, nil
}
