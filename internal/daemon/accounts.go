package daemon

import (
	"github.com/Filatest/sync-your-cookie/internal/api"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/pkg/credman"
)

// Accounts stores the remote store credentials.
type Accounts = api.Accounts

// VaultAccounts keeps the account in a credman vault.
type VaultAccounts struct {
	vault *credman.Vault
}

// NewVaultAccounts returns Accounts backed by v.
func NewVaultAccounts(v *credman.Vault) *VaultAccounts {
	return &VaultAccounts{vault: v}
}

func (a *VaultAccounts) Account() (kv.Account, error) {
	stored, err := a.vault.Load()
	if err != nil {
		return kv.Account{}, err
	}
	return kv.Account{
		AccountID:   stored.AccountID,
		NamespaceID: stored.NamespaceID,
		Token:       stored.Token,
	}, nil
}

func (a *VaultAccounts) SetAccount(acct kv.Account) error {
	return a.vault.Save(credman.Account{
		AccountID:   acct.AccountID,
		NamespaceID: acct.NamespaceID,
		Token:       acct.Token,
	})
}

func (a *VaultAccounts) ClearAccount() error {
	return a.vault.Clear()
}
