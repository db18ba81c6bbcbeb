package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// APIKeyHeader is the HTTP header name for API key authentication.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator authenticates service callers by the X-API-Key header.
type APIKeyAuthenticator struct {
	keys map[string]string // key value -> client name
}

// NewAPIKeyAuthenticator parses "key1:name1,key2:name2" into an authenticator.
func NewAPIKeyAuthenticator(keysConfig string) (*APIKeyAuthenticator, error) {
	keys, err := parseKeyPairs(keysConfig)
	if err != nil {
		return nil, fmt.Errorf("apikey auth: %w", err)
	}
	return &APIKeyAuthenticator{keys: keys}, nil
}

func parseKeyPairs(config string) (map[string]string, error) {
	trimmed := strings.TrimSpace(config)
	if trimmed == "" {
		return nil, fmt.Errorf("keys config must not be empty")
	}

	keys := make(map[string]string)
	for _, entry := range strings.Split(trimmed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		key, name, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("invalid entry format, expected key:name")
		}
		key = strings.TrimSpace(key)
		name = strings.TrimSpace(name)
		if key == "" || name == "" {
			return nil, fmt.Errorf("key and name must not be empty")
		}

		keys[key] = name
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("no valid key entries found")
	}
	return keys, nil
}

// Authenticate compares the header against every configured key in constant time.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	apiKey := r.Header.Get(APIKeyHeader)
	if apiKey == "" {
		return nil, ErrUnauthenticated
	}

	for key, name := range a.keys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
			return &AuthInfo{
				Method:  AuthMethodAPIKey,
				Subject: name,
			}, nil
		}
	}

	return nil, ErrInvalidAPIKey
}

// Method returns the authentication method type.
func (a *APIKeyAuthenticator) Method() AuthMethod {
	return AuthMethodAPIKey
}
