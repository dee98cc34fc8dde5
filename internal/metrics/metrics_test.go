package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(reservationOps.WithLabelValues("create", ResultOK))
	IncReservationOp("create", ResultOK)
	assert.Equal(t, before+1, testutil.ToFloat64(reservationOps.WithLabelValues("create", ResultOK)))

	beforeErr := testutil.ToFloat64(storeErrors.WithLabelValues("save"))
	IncStoreError("save")
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(storeErrors.WithLabelValues("save")))

	beforeCorrupt := testutil.ToFloat64(corruptTables)
	IncCorruptTable()
	assert.Equal(t, beforeCorrupt+1, testutil.ToFloat64(corruptTables))
}

func TestWriteTextfile(t *testing.T) {
	Register()
	IncReservationOp("cancel", ResultNoop)

	path := filepath.Join(t.TempDir(), "pensionado.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pensionado_reservation_operations_total")
}
