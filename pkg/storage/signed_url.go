package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadClaims is what a verified download token grants access to.
type DownloadClaims struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// DownloadSigner issues HMAC-signed tokens binding a report job to the
// stored file it produced. A token has four dot-separated parts: job ID,
// expiry (unix seconds), base64url path and base64url signature.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDownloadSigner constructs a signer. A non-positive ttl means one day.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for relPath and the instant it stops being valid.
func (s *DownloadSigner) Sign(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" || strings.Contains(jobID, ".") {
		return "", time.Time{}, errors.New("sign download: job id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("sign download: secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	payload := strings.Join([]string{
		jobID,
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(relPath)),
	}, ".")
	return payload + "." + s.signature(payload), expiresAt, nil
}

// Verify checks the signature and expiry of token.
func (s *DownloadSigner) Verify(token string) (DownloadClaims, error) {
	cut := strings.LastIndexByte(token, '.')
	if cut < 0 {
		return DownloadClaims{}, ErrTokenInvalid
	}
	payload, sig := token[:cut], token[cut+1:]
	if !hmac.Equal([]byte(sig), []byte(s.signature(payload))) {
		return DownloadClaims{}, ErrTokenInvalid
	}

	parts := strings.Split(payload, ".")
	if len(parts) != 3 {
		return DownloadClaims{}, ErrTokenInvalid
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}
	path, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}

	claims := DownloadClaims{JobID: parts[0], Path: string(path), ExpiresAt: time.Unix(exp, 0)}
	if s.now().After(claims.ExpiresAt) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func (s *DownloadSigner) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
