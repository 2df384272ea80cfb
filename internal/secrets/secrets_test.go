package secrets

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVault struct {
	values map[string]string
	calls  int
	err    error
}

func (f *fakeVault) GetSecret(_ context.Context, name, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	if f.err != nil {
		return azsecrets.GetSecretResponse{}, f.err
	}
	v, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "SecretNotFound"}
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: &v}}, nil
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource("", "test"))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}

func TestVaultClient_CachesUntilExpiry(t *testing.T) {
	fake := &fakeVault{values: map[string]string{"POSTGRES-MAIN-PASSWORD": "s3cret"}}
	v := newVaultClient(fake, &VaultConfig{VaultName: "kv", CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		got, err := v.GetSecret(context.Background(), "POSTGRES-MAIN-PASSWORD")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
	}
	assert.Equal(t, 1, fake.calls)

	now = now.Add(2 * time.Minute)
	_, err := v.GetSecret(context.Background(), "POSTGRES-MAIN-PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)

	v.ClearCache()
	_, err = v.GetSecret(context.Background(), "POSTGRES-MAIN-PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, 3, fake.calls)
}

func TestVaultClient_NoCache(t *testing.T) {
	fake := &fakeVault{values: map[string]string{"a": "1"}}
	v := newVaultClient(fake, &VaultConfig{VaultName: "kv"}, zap.NewNop())

	_, _ = v.GetSecret(context.Background(), "a")
	_, _ = v.GetSecret(context.Background(), "a")
	assert.Equal(t, 2, fake.calls)
}

func TestVaultClient_Errors(t *testing.T) {
	v := newVaultClient(&fakeVault{values: map[string]string{}}, &VaultConfig{VaultName: "kv"}, zap.NewNop())
	_, err := v.GetSecret(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	boom := errors.New("network down")
	v = newVaultClient(&fakeVault{err: boom}, &VaultConfig{VaultName: "kv"}, zap.NewNop())
	_, err = v.GetSecret(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSecretNotFound)
}

func TestProvider_GetSecretOrEnv(t *testing.T) {
	env := map[string]string{"DATABASE_HOST": "db.internal", "EMPTY": ""}
	fake := &fakeVault{values: map[string]string{"POSTGRES-MAIN-HOST": "vault-host", "POSTGRES-MAIN-USER": "sitebook"}}
	p := &Provider{
		source:    SourceVault,
		vault:     newVaultClient(fake, &VaultConfig{VaultName: "kv"}, zap.NewNop()),
		lookupEnv: func(k string) (string, bool) { v, ok := env[k]; return v, ok },
		logger:    zap.NewNop(),
	}

	got, err := p.GetSecretOrEnv(context.Background(), "POSTGRES-MAIN-HOST", "DATABASE_HOST")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", got)
	assert.Equal(t, 0, fake.calls)

	got, err = p.GetSecretOrEnv(context.Background(), "POSTGRES-MAIN-USER", "EMPTY")
	require.NoError(t, err)
	assert.Equal(t, "sitebook", got)
	assert.Equal(t, SourceVault, p.Source())
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("SITEBOOK_TEST_SECRET", "value")
	p, err := NewProvider(&ProviderConfig{Source: SourceAuto, Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SourceEnvironment, p.Source())

	got, err := p.GetSecret(context.Background(), "SITEBOOK_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = p.GetSecret(context.Background(), "SITEBOOK_TEST_SECRET_UNSET")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceVault}, zap.NewNop())
	assert.Error(t, err)
}
