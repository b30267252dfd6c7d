// Package kv talks to the remote key-value store that holds the encoded
// cookie maps. The store is a Cloudflare Workers KV namespace addressed by
// account id, namespace id and API token.
package kv

import (
	"errors"

	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Account holds the remote store credentials.
type Account struct {
	AccountID   string `json:"accountId" yaml:"accountId" validate:"required"`
	NamespaceID string `json:"namespaceId" yaml:"namespaceId" validate:"required"`
	Token       string `json:"token" yaml:"token" validate:"required"`
}

var checkMessages = map[string]string{
	"AccountID":   "Account ID is empty",
	"NamespaceID": "NamespaceId ID is empty",
	"Token":       "Token is empty",
}

// Check reports the first missing credential as an AccountCheck error.
func (a Account) Check() error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := checkMessages[verrs[0].StructField()]; ok {
			return syncerr.New(syncerr.AccountCheck, msg)
		}
	}
	return syncerr.Wrap(syncerr.AccountCheck, err)
}

// Configured reports whether every credential is present.
func (a Account) Configured() bool {
	return a.Check() == nil
}

// Redacted returns a copy safe for printing.
func (a Account) Redacted() Account {
	if len(a.Token) > 4 {
		a.Token = a.Token[:4] + "…"
	} else if a.Token != "" {
		a.Token = "…"
	}
	return a
}
