package httpclient_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"primes/internal/api/handler/v1handler"
	"primes/internal/scanner"
	mockscanner "primes/internal/scanner/mock"
	"primes/pkg/domain"
	"primes/pkg/logger"
	"primes/pkg/primality"
	"primes/pkg/primesclient"
	"primes/pkg/primesclient/httpclient"
	"primes/pkg/serrors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

// serve runs the v1 routes on top of s and returns a client for them signed
// in as userID, along with the server URL.
func serve(t *testing.T, s scanner.Scanner, userID uuid.UUID) (*httpclient.Client, string) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pubASN1, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubASN1})

	sh, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{PublicKey: string(pubPEM)})
	require.NoError(t, err)

	mux := http.NewServeMux()
	v1handler.New(v1handler.Deps{
		Scanner:      s,
		DefaultRange: primality.Range{Upper: 20, Inclusive: true},
	}).Register(mux, sh)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(priv)
	require.NoError(t, err)

	c, err := httpclient.New(srv.Client(), srv.URL, token)
	require.NoError(t, err)

	return c, srv.URL
}

func TestClient_AgainstServer_Public(t *testing.T) {
	s, err := scanner.New(nil, nil, scanner.Options{MaxUpper: 1000})
	require.NoError(t, err)
	c, _ := serve(t, s, uuid.New())
	ctx := context.Background()

	prime, err := c.Check(ctx, 2)
	require.NoError(t, err)
	require.True(t, prime)

	prime, err = c.Check(ctx, 1)
	require.NoError(t, err)
	require.False(t, prime)

	_, err = c.Check(ctx, -5)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	res, err := c.Primes(ctx, primality.Range{Upper: 20, Inclusive: true})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3, 5, 7, 11, 13, 17, 19}, res.Primes)
	require.Equal(t, int64(19), res.Max)

	var streamed []int64
	require.NoError(t, c.StreamPrimes(ctx, primality.Range{Upper: 10}, func(p int64) {
		streamed = append(streamed, p)
	}))
	require.Equal(t, []int64{2, 3, 5, 7}, streamed)

	_, err = c.Primes(ctx, primality.Range{Upper: 2})
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = c.Primes(ctx, primality.Range{Upper: 5000})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestClient_AgainstServer_Scans(t *testing.T) {
	ctrl := gomock.NewController(t)
	sc := mockscanner.NewMockScanner(ctrl)
	userID := uuid.New()
	c, _ := serve(t, sc, userID)
	ctx := context.Background()

	upTo20 := primality.Range{Upper: 20, Inclusive: true}
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	pending := &domain.Scan{
		ID:        domain.ScanID(uuid.New()),
		UserID:    domain.UserID(userID),
		Range:     upTo20,
		Status:    domain.ScanStatusPending,
		Result:    primality.Result{Max: primality.SmallestPrime},
		CreatedAt: created,
	}
	completed := *pending
	completed.Status = domain.ScanStatusCompleted
	completed.Result = upTo20.Scan(nil)
	completed.Attempts = 1
	completed.UpdatedAt = created.Add(time.Second)

	sc.EXPECT().Enqueue(gomock.Any(), domain.UserID(userID), upTo20).Return(pending, nil)
	got, err := c.CreateScan(ctx, upTo20)
	require.NoError(t, err)
	require.Equal(t, pending.ID, got.ID)
	require.Equal(t, domain.ScanStatusPending, got.Status)
	require.True(t, got.CreatedAt.Equal(created))

	sc.EXPECT().Result(gomock.Any(), domain.UserID(userID), pending.ID).Return(&completed, nil)
	got, err = c.Scan(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, completed.Result, got.Result)
	require.True(t, got.UpdatedAt.Equal(completed.UpdatedAt))

	sc.EXPECT().UserScans(gomock.Any(), domain.UserID(userID), domain.ScanStatusCompleted, "", uint(2)).
		Return([]domain.Scan{completed}, "", nil)
	page, err := c.Scans(ctx, primesclient.ListOptions{Status: domain.ScanStatusCompleted, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Empty(t, page.NextCursor)

	sc.EXPECT().Delete(gomock.Any(), domain.UserID(userID), pending.ID).Return(nil)
	require.NoError(t, c.DeleteScan(ctx, pending.ID))

	sc.EXPECT().Result(gomock.Any(), domain.UserID(userID), pending.ID).
		Return(nil, serrors.With(serrors.ErrNotFound, "scan not found"))
	_, err = c.Scan(ctx, pending.ID)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestClient_AgainstServer_Unauthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, url := serve(t, mockscanner.NewMockScanner(ctrl), uuid.New())

	// public routes need no token
	_, err := c.Check(context.Background(), 7)
	require.NoError(t, err)

	bad, err := httpclient.New(nil, url, "not-a-jwt")
	require.NoError(t, err)
	_, err = bad.Scans(context.Background(), primesclient.ListOptions{})
	require.ErrorIs(t, err, serrors.ErrUnauthorized)

	anon, err := httpclient.New(nil, url, "")
	require.NoError(t, err)
	_, err = anon.CreateScan(context.Background(), primality.Range{Upper: 10})
	require.ErrorIs(t, err, serrors.ErrUnauthorized)
}
