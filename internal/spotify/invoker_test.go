package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRefresher hands out sequential tokens and records which flow was used.
type fakeRefresher struct {
	appCalls     int
	refreshCalls int
	refreshedBy  string
	err          error
}

func (f *fakeRefresher) ClientCredentials(ctx context.Context) (Credential, error) {
	f.appCalls++
	if f.err != nil {
		return Credential{}, f.err
	}
	return AppCredential("app-token-new"), nil
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (Credential, error) {
	f.refreshCalls++
	f.refreshedBy = refreshToken
	if f.err != nil {
		return Credential{}, f.err
	}
	return UserCredential("", "user-token-new", "refresh-new"), nil
}

// scriptedOp fails with the scripted errors in order, then succeeds.
type scriptedOp struct {
	calls  int
	tokens []string
	script []error
}

func (s *scriptedOp) run(ctx context.Context, token string) (json.RawMessage, error) {
	s.tokens = append(s.tokens, token)
	idx := s.calls
	s.calls++
	if idx < len(s.script) && s.script[idx] != nil {
		return nil, s.script[idx]
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func newTestInvoker(r Refresher) *Invoker {
	return NewInvoker(r, zap.NewNop(), nil)
}

func TestDo_SuccessFirstTry(t *testing.T) {
	refresher := &fakeRefresher{}
	op := &scriptedOp{}

	result, err := newTestInvoker(refresher).Do(context.Background(), "search",
		AppCredential("app-token"), nil, op.run)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
	assert.Equal(t, 1, op.calls)
	assert.Zero(t, refresher.appCalls)
	assert.Zero(t, refresher.refreshCalls)
}

func TestDo_RetriesOnceWithFreshAppToken(t *testing.T) {
	refresher := &fakeRefresher{}
	op := &scriptedOp{script: []error{ErrUnauthorized}}

	var persisted []Credential
	persist := func(ctx context.Context, cred Credential) error {
		persisted = append(persisted, cred)
		return nil
	}

	result, err := newTestInvoker(refresher).Do(context.Background(), "search",
		AppCredential("app-token-stale"), persist, op.run)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
	assert.Equal(t, 2, op.calls)
	assert.Equal(t, 1, refresher.appCalls)
	assert.Zero(t, refresher.refreshCalls)

	// The retry must use the new token, never the stale one again.
	require.Len(t, op.tokens, 2)
	assert.Equal(t, "app-token-stale", op.tokens[0])
	assert.Equal(t, "app-token-new", op.tokens[1])

	// Persist callback fires exactly once with the new credential.
	require.Len(t, persisted, 1)
	assert.Equal(t, "app-token-new", persisted[0].Access)
	assert.NotEqual(t, "app-token-stale", persisted[0].Access)
}

func TestDo_UserCredentialUsesRefreshFlow(t *testing.T) {
	refresher := &fakeRefresher{}
	op := &scriptedOp{script: []error{ErrUnauthorized}}

	var persisted Credential
	persist := func(ctx context.Context, cred Credential) error {
		persisted = cred
		return nil
	}

	_, err := newTestInvoker(refresher).Do(context.Background(), "track",
		UserCredential("user-1", "stale", "refresh-old"), persist, op.run)

	require.NoError(t, err)
	assert.Equal(t, 1, refresher.refreshCalls)
	assert.Zero(t, refresher.appCalls)
	assert.Equal(t, "refresh-old", refresher.refreshedBy)

	// Owner reference survives the refresh so the right record is updated.
	assert.Equal(t, "user-1", persisted.OwnerID)
	assert.Equal(t, CredentialUser, persisted.Kind)
	assert.Equal(t, "user-token-new", persisted.Access)
}

func TestDo_TwoAuthFailuresExhaustRetry(t *testing.T) {
	refresher := &fakeRefresher{}
	// Would succeed on the third call, but the invoker must never make it.
	op := &scriptedOp{script: []error{ErrUnauthorized, ErrUnauthorized}}

	_, err := newTestInvoker(refresher).Do(context.Background(), "playlist",
		AppCredential("stale"), nil, op.run)

	require.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, 2, op.calls)
}

func TestDo_NonAuthErrorSkipsRefresh(t *testing.T) {
	refresher := &fakeRefresher{}
	upstream := &APIError{Status: 429, Body: "rate limited"}
	op := &scriptedOp{script: []error{upstream}}

	_, err := newTestInvoker(refresher).Do(context.Background(), "search",
		AppCredential("token"), nil, op.run)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Status)
	assert.Equal(t, 1, op.calls)
	assert.Zero(t, refresher.appCalls)
	assert.Zero(t, refresher.refreshCalls)
}

func TestDo_RefreshFailureSurfacesWithoutSecondCall(t *testing.T) {
	refresher := &fakeRefresher{err: ErrUpstreamAuth}
	op := &scriptedOp{script: []error{ErrUnauthorized}}

	_, err := newTestInvoker(refresher).Do(context.Background(), "search",
		AppCredential("stale"), nil, op.run)

	require.ErrorIs(t, err, ErrUpstreamAuth)
	assert.Equal(t, 1, op.calls)
}

func TestDo_PersistFailureDoesNotAbortRetry(t *testing.T) {
	refresher := &fakeRefresher{}
	op := &scriptedOp{script: []error{ErrUnauthorized}}

	persist := func(ctx context.Context, cred Credential) error {
		return errors.New("db down")
	}

	result, err := newTestInvoker(refresher).Do(context.Background(), "search",
		UserCredential("user-1", "stale", "refresh-old"), persist, op.run)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
}

func TestAppCredentialHolder_LazyMintAndReplace(t *testing.T) {
	refresher := &fakeRefresher{}
	holder := NewAppCredentialHolder(refresher)

	cred, err := holder.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-token-new", cred.Access)
	assert.Equal(t, 1, refresher.appCalls)

	// Second read serves the stored value without another mint.
	_, err = holder.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refresher.appCalls)

	holder.Replace(AppCredential("replaced"))
	cred, err = holder.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "replaced", cred.Access)
}

func TestAppCredentialHolder_RetryScenarioUpdatesProcessWide(t *testing.T) {
	refresher := &fakeRefresher{}
	holder := NewAppCredentialHolder(refresher)
	holder.Replace(AppCredential("expired"))

	op := &scriptedOp{script: []error{ErrUnauthorized}}
	persist := func(ctx context.Context, cred Credential) error {
		holder.Replace(cred)
		return nil
	}

	cred, err := holder.Current(context.Background())
	require.NoError(t, err)

	result, err := newTestInvoker(refresher).Do(context.Background(), "new-releases",
		cred, persist, op.run)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))

	// Subsequent requests in the same process see the refreshed value.
	current, err := holder.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-token-new", current.Access)
}
