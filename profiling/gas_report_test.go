package profiling

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGasReportWith ensures With returns a new report, leaving the receiver untouched, and keeps completion order.
func TestGasReportWith(t *testing.T) {
	empty := NewGasReport()
	first, err := empty.With(DeploymentOperation, 500_000)
	require.NoError(t, err)
	second, err := first.With("transfer", 51_000)
	require.NoError(t, err)
	third, err := second.With("approve", 46_000)
	require.NoError(t, err)

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 2, second.Len())
	_, found := first.Get("transfer")
	assert.False(t, found)

	// Branching from an earlier report does not affect later ones
	branch, err := first.With("balanceOf", 24_000)
	require.NoError(t, err)
	assert.Equal(t, []string{DeploymentOperation, "balanceOf"}, branch.Operations())
	assert.Equal(t, []string{DeploymentOperation, "transfer", "approve"}, third.Operations())
	assert.Equal(t, []string{"approve", DeploymentOperation, "transfer"}, third.SortedOperations())

	gasUsed, found := third.Get("approve")
	assert.True(t, found)
	assert.EqualValues(t, 46_000, gasUsed)

	expected := map[string]uint64{DeploymentOperation: 500_000, "transfer": 51_000, "approve": 46_000}
	if diff := cmp.Diff(expected, third.ToMap()); diff != "" {
		t.Errorf("unexpected report contents (-want +got):\n%s", diff)
	}
	assert.Equal(t, []GasReportEntry{
		{Operation: DeploymentOperation, GasUsed: 500_000},
		{Operation: "transfer", GasUsed: 51_000},
		{Operation: "approve", GasUsed: 46_000},
	}, third.Entries())
}

// TestGasReportRejectsDuplicates ensures an operation can only be recorded once.
func TestGasReportRejectsDuplicates(t *testing.T) {
	report, err := NewGasReport().With("ownerOf", 24_000)
	require.NoError(t, err)

	_, err = report.With("ownerOf", 24_000)
	var duplicateErr *DuplicateOperationError
	require.ErrorAs(t, err, &duplicateErr)
	assert.Equal(t, "ownerOf", duplicateErr.Operation)

	_, err = report.With("ownerOf#2", 24_000)
	assert.NoError(t, err)
}

// TestGasReportFreeze ensures a frozen report refuses additions while the report it was frozen from does not.
func TestGasReportFreeze(t *testing.T) {
	report, err := NewGasReport().With(DeploymentOperation, 1)
	require.NoError(t, err)

	frozen := report.Freeze()
	assert.True(t, frozen.IsFrozen())
	assert.False(t, report.IsFrozen())

	_, err = frozen.With("transfer", 1)
	assert.ErrorIs(t, err, ErrReportFrozen)
	_, err = report.With("transfer", 1)
	assert.NoError(t, err)
}

// TestGasReportJSON ensures reports serialize as JSON objects whose keys keep completion order, and that decoding
// preserves that order.
func TestGasReportJSON(t *testing.T) {
	report := NewGasReport()
	var err error
	for _, operation := range []string{DeploymentOperation, "totalSupply", "balanceOf"} {
		report, err = report.With(operation, uint64(len(operation)))
		require.NoError(t, err)
	}

	b, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Equal(t, `{"deployment":10,"totalSupply":11,"balanceOf":9}`, string(b))

	var decoded GasReport
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, decoded.IsFrozen())
	assert.Equal(t, report.Operations(), decoded.Operations())
	assert.Equal(t, report.ToMap(), decoded.ToMap())

	b, err = json.Marshal(NewGasReport())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))

	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"transfer": -1}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"transfer": 1, "transfer": 2}`), &decoded))
}
