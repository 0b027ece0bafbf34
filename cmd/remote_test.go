package main

import (
	"bytes"
	"context"
	"primes/internal/config"
	"primes/pkg/domain"
	"primes/pkg/primality"
	"primes/pkg/primesclient"
	mockprimesclient "primes/pkg/primesclient/mock"
	"primes/pkg/serrors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// runRemote executes the remote command with a mock client and returns stdout.
func runRemote(t *testing.T, c primesclient.Client, args ...string) (string, error) {
	t.Helper()

	cfg := testConfig()
	cfg.Remote.ServerURL = "http://primes.test"
	cmd := remoteCommand(cfg, func(_ *config.Config, serverURL, token string) (primesclient.Client, error) {
		require.Equal(t, "http://primes.test", serverURL)
		require.Equal(t, "tkn", token)

		return c, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--token", "tkn"}, args...))
	err := cmd.Execute()

	return out.String(), err
}

func TestRemoteCheck(t *testing.T) {
	c := mockprimesclient.NewMockClient(gomock.NewController(t))
	c.EXPECT().Check(gomock.Any(), int64(7)).Return(true, nil)

	out, err := runRemote(t, c, "check", "7")
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestRemoteCheck_ServerError(t *testing.T) {
	c := mockprimesclient.NewMockClient(gomock.NewController(t))
	c.EXPECT().Check(gomock.Any(), int64(-5)).Return(false, serrors.With(serrors.ErrBadRequest, "negative"))

	_, err := runRemote(t, c, "check", "--", "-5")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestRemoteScan(t *testing.T) {
	cases := []struct {
		name string
		args []string
		rng  primality.Range
		want string
	}{
		{
			name: "configured default",
			rng:  primality.Range{Upper: 20, Inclusive: true},
			want: "2\n3\n5\n7\n11\n13\n17\n19\n",
		},
		{
			name: "explicit upper is exclusive",
			args: []string{"--upper", "10"},
			rng:  primality.Range{Upper: 10},
			want: "2\n3\n5\n7\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := mockprimesclient.NewMockClient(gomock.NewController(t))
			c.EXPECT().StreamPrimes(gomock.Any(), tc.rng, gomock.Any()).
				DoAndReturn(func(_ context.Context, r primality.Range, emit func(int64)) error {
					for p := range r.Primes() {
						emit(p)
					}

					return nil
				})

			out, err := runRemote(t, c, append([]string{"scan"}, tc.args...)...)
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
		})
	}
}

func TestRemoteSubmitAndGet(t *testing.T) {
	id := domain.ScanID(uuid.New())
	r := primality.Range{Upper: 10}
	c := mockprimesclient.NewMockClient(gomock.NewController(t))
	c.EXPECT().CreateScan(gomock.Any(), r).Return(&domain.Scan{ID: id, Range: r, Status: domain.ScanStatusPending}, nil)
	c.EXPECT().Scan(gomock.Any(), id).Return(&domain.Scan{
		ID:        id,
		Range:     r,
		Status:    domain.ScanStatusCompleted,
		Result:    r.Scan(nil),
		CreatedAt: time.Now(),
	}, nil)

	out, err := runRemote(t, c, "submit", "--upper", "10")
	require.NoError(t, err)
	require.Equal(t, id.String()+" PENDING\n", out)

	out, err = runRemote(t, c, "get", id.String())
	require.NoError(t, err)
	require.Equal(t, id.String()+" [2, 10) COMPLETED\n2\n3\n5\n7\n", out)
}

func TestRemoteGet_InvalidID(t *testing.T) {
	c := mockprimesclient.NewMockClient(gomock.NewController(t))

	_, err := runRemote(t, c, "get", "nope")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestRemoteList(t *testing.T) {
	id := domain.ScanID(uuid.New())
	c := mockprimesclient.NewMockClient(gomock.NewController(t))
	c.EXPECT().Scans(gomock.Any(), primesclient.ListOptions{Status: domain.ScanStatusFailed, Limit: 3}).
		Return(primesclient.ScanList{Items: []domain.Scan{
			{ID: id, Range: primality.Range{Upper: 20, Inclusive: true}, Status: domain.ScanStatusFailed},
		}}, nil)

	out, err := runRemote(t, c, "list", "--status", "FAILED", "--limit", "3")
	require.NoError(t, err)
	require.Equal(t, id.String()+" [2, 20] FAILED\n", out)
}

func TestRemoteDelete(t *testing.T) {
	id := domain.ScanID(uuid.New())
	c := mockprimesclient.NewMockClient(gomock.NewController(t))
	c.EXPECT().DeleteScan(gomock.Any(), id).Return(serrors.With(serrors.ErrNotFound, "scan not found"))

	_, err := runRemote(t, c, "delete", id.String())
	require.ErrorIs(t, err, serrors.ErrNotFound)
}
