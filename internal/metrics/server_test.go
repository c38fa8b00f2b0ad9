package metrics_test

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zircuit-multisig/safe-eth-go/internal/metrics"
	"github.com/zircuit-multisig/safe-eth-go/internal/metrics/collectors"
)

func shutdown(t *testing.T, server *http.Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
}

func TestCreateMetricsServer(t *testing.T) {
	t.Run("StartServer", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		// Collectors are gathered concurrently.
		mock.MatchExpectationsInOrder(false)
		mock.ExpectQuery(regexp.QuoteMeta(collectors.ContractsTotalCountQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(28))
		mock.ExpectQuery(regexp.QuoteMeta(collectors.ContractsByExplorerQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"source", "count", "partial"}).
				AddRow("etherscan", 20, 0).
				AddRow("sourcify", 8, 3))

		server, err := metrics.CreateMetricsServer(db, "127.0.0.1:0")
		require.NoError(t, err)
		defer shutdown(t, server)

		resp, err := http.Get("http://" + server.Addr + "/metrics")
		require.NoError(t, err, "Failed to connect to metrics server")
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		assert.Contains(t, string(body), `safe_eth_contracts_total_count{store="postgres"} 28`)
		assert.Contains(t, string(body), `safe_eth_contracts_by_explorer{explorer="sourcify",store="postgres"} 8`)
		assert.Contains(t, string(body), `safe_eth_contracts_partial_match_by_explorer{explorer="sourcify",store="postgres"} 3`)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WithoutStore", func(t *testing.T) {
		server, err := metrics.CreateMetricsServer(nil, "127.0.0.1:0")
		require.NoError(t, err)
		defer shutdown(t, server)

		resp, err := http.Get("http://" + server.Addr + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("WhenInvalidAddress", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		_, err = metrics.CreateMetricsServer(db, "invalid-address😆")
		require.Error(t, err)
	})

	t.Run("WhenInvalidPort", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		_, err = metrics.CreateMetricsServer(db, "localhost:99999")
		require.Error(t, err)
	})
}
