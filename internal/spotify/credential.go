package spotify

import (
	"context"
	"sync"
)

// CredentialKind distinguishes the two ways this service can call Spotify.
type CredentialKind string

const (
	// CredentialApp is the shared client-credentials token used for
	// anonymous browsing. It has no refresh token.
	CredentialApp CredentialKind = "app"
	// CredentialUser is one user's authorization-code token pair.
	CredentialUser CredentialKind = "user"
)

// Credential is a tagged Spotify credential. Refresh and OwnerID are only
// set for the user kind.
type Credential struct {
	Kind    CredentialKind
	Access  string
	Refresh string
	// OwnerID is the local user id whose record stores this credential.
	OwnerID string
}

// AppCredential builds an app-level credential value.
func AppCredential(access string) Credential {
	return Credential{Kind: CredentialApp, Access: access}
}

// UserCredential builds a user-level credential value.
func UserCredential(ownerID, access, refresh string) Credential {
	return Credential{Kind: CredentialUser, OwnerID: ownerID, Access: access, Refresh: refresh}
}

// AppCredentialHolder owns the process-wide app credential. It is minted
// lazily on first use and wholesale-replaced whenever a refresh happens.
// Concurrent refreshes are a benign race: last writer wins and both writers
// hold valid tokens.
type AppCredentialHolder struct {
	mu       sync.Mutex
	cred     Credential
	provider ClientCredentialsProvider
}

// ClientCredentialsProvider mints app-level credentials.
type ClientCredentialsProvider interface {
	ClientCredentials(ctx context.Context) (Credential, error)
}

// NewAppCredentialHolder builds an empty holder backed by the provider.
func NewAppCredentialHolder(provider ClientCredentialsProvider) *AppCredentialHolder {
	return &AppCredentialHolder{provider: provider}
}

// Current returns the stored app credential, minting one on first use.
func (h *AppCredentialHolder) Current(ctx context.Context) (Credential, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cred.Access != "" {
		return h.cred, nil
	}
	cred, err := h.provider.ClientCredentials(ctx)
	if err != nil {
		return Credential{}, err
	}
	h.cred = cred
	return cred, nil
}

// Replace swaps in a new app credential so subsequent requests in this
// process see the refreshed value.
func (h *AppCredentialHolder) Replace(cred Credential) {
	h.mu.Lock()
	h.cred = cred
	h.mu.Unlock()
}
