package kv

import (
	"context"
)

// Default storage keys.
const (
	DefaultKey          = "sync-your-cookie"
	DefaultIncognitoKey = "sync-your-cookie-incognito"
)

// Keys names the normal and incognito blobs.
type Keys struct {
	Normal    string
	Incognito string
}

// WithDefaults fills empty keys with the default names.
func (k Keys) WithDefaults() Keys {
	if k.Normal == "" {
		k.Normal = DefaultKey
	}
	if k.Incognito == "" {
		k.Incognito = DefaultIncognitoKey
	}
	return k
}

// Gateway exposes one read/write pair per data plane. Every call checks
// the account before touching the network.
type Gateway struct {
	store Store
	keys  Keys
}

// NewGateway returns a Gateway over store.
func NewGateway(store Store, keys Keys) *Gateway {
	return &Gateway{store: store, keys: keys.WithDefaults()}
}

// Keys returns the keys the gateway reads and writes.
func (g *Gateway) Keys() Keys {
	return g.keys
}

// Read returns the normal blob, or found=false when the key is absent.
func (g *Gateway) Read(ctx context.Context, acct Account) (blob string, found bool, err error) {
	return g.read(ctx, acct, g.keys.Normal)
}

// Write stores the normal blob.
func (g *Gateway) Write(ctx context.Context, blob string, acct Account) (*WriteResult, error) {
	return g.write(ctx, acct, g.keys.Normal, blob)
}

// ReadIncognito returns the incognito blob.
func (g *Gateway) ReadIncognito(ctx context.Context, acct Account) (blob string, found bool, err error) {
	return g.read(ctx, acct, g.keys.Incognito)
}

// WriteIncognito stores the incognito blob.
func (g *Gateway) WriteIncognito(ctx context.Context, blob string, acct Account) (*WriteResult, error) {
	return g.write(ctx, acct, g.keys.Incognito, blob)
}

func (g *Gateway) read(ctx context.Context, acct Account, key string) (string, bool, error) {
	if err := acct.Check(); err != nil {
		return "", false, err
	}
	return g.store.Get(ctx, acct, key)
}

func (g *Gateway) write(ctx context.Context, acct Account, key, blob string) (*WriteResult, error) {
	if err := acct.Check(); err != nil {
		return nil, err
	}
	return g.store.Put(ctx, acct, key, blob)
}
