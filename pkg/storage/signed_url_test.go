package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("job-1", "pace-summary_FA24_20241001_083000.csv")
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", claims.JobID)
	assert.Equal(t, "pace-summary_FA24_20241001_083000.csv", claims.Path)
	assert.True(t, expiresAt.Equal(claims.ExpiresAt))
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("job-1", "a.csv")
	require.NoError(t, err)

	other, _, err := NewDownloadSigner("other", time.Hour).Sign("job-1", "a.csv")
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", token + "x", "job-2" + token[len("job-1"):], other} {
		_, err := signer.Verify(bad)
		assert.ErrorIs(t, err, ErrTokenInvalid, bad)
	}
}

func TestDownloadSignerExpiry(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Minute)
	now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	token, _, err := signer.Sign("job-1", "a.csv")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	claims, err := signer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "job-1", claims.JobID)
}

func TestDownloadSignerRequiresInputs(t *testing.T) {
	_, _, err := NewDownloadSigner("", time.Hour).Sign("job-1", "a.csv")
	assert.Error(t, err)
	_, _, err = NewDownloadSigner("secret", time.Hour).Sign("job.1", "a.csv")
	assert.Error(t, err)
	_, _, err = NewDownloadSigner("secret", time.Hour).Sign("job-1", "")
	assert.Error(t, err)
}
