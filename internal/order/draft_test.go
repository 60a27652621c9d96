package order_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overstock-orders/internal/order"
)

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{
		"3":    3,
		" 7 ":  7,
		"0":    0,
		"-5":   0,
		"abc":  0,
		"":     0,
		"2.5":  0,
		"1e3":  0,
		"9999": 9999,
	}
	for raw, want := range cases {
		require.Equal(t, want, order.ParseQuantity(raw), "input %q", raw)
	}
}

func TestSetQuantityClampsToStock(t *testing.T) {
	d := order.NewDraft(time.Now())
	id := uuid.New()

	require.Equal(t, 10, d.SetQuantity(id, "999", 10))
	require.Equal(t, 10, d.Quantity(id))

	require.Equal(t, 0, d.SetQuantity(id, "-5", 10))
	require.Equal(t, 0, d.Quantity(id))

	require.Equal(t, 0, d.SetQuantity(id, "abc", 10))
	require.Equal(t, 3, d.SetQuantity(id, "3", 10))
}

func TestSetQuantityWithZeroStock(t *testing.T) {
	d := order.NewDraft(time.Now())
	id := uuid.New()
	require.Equal(t, 0, d.SetQuantity(id, "4", 0))
	require.Empty(t, d.Snapshot())
}

func TestApplyStockChangeReducesSelection(t *testing.T) {
	d := order.NewDraft(time.Now())
	id := uuid.New()
	d.SetQuantity(id, "8", 10)

	adj := d.ApplyStockChange(id, 5)
	require.NotNil(t, adj)
	require.Equal(t, order.AdjustReduced, adj.Reason)
	require.Equal(t, 8, adj.OldQuantity)
	require.Equal(t, 5, adj.NewQuantity)
	require.Equal(t, 5, d.Quantity(id))
}

func TestApplyStockChangeDepletesSelection(t *testing.T) {
	d := order.NewDraft(time.Now())
	id := uuid.New()
	d.SetQuantity(id, "8", 10)

	adj := d.ApplyStockChange(id, 0)
	require.NotNil(t, adj)
	require.Equal(t, order.AdjustDepleted, adj.Reason)
	require.Equal(t, 0, adj.NewQuantity)
	require.Equal(t, 0, d.Quantity(id))
}

func TestApplyStockChangeNoOpWhenStockSufficient(t *testing.T) {
	d := order.NewDraft(time.Now())
	id := uuid.New()
	d.SetQuantity(id, "3", 10)

	require.Nil(t, d.ApplyStockChange(id, 3))
	require.Nil(t, d.ApplyStockChange(id, 100))
	require.Nil(t, d.ApplyStockChange(uuid.New(), 0))
	require.Equal(t, 3, d.Quantity(id))
}

func TestDrainAdjustmentsClearsQueue(t *testing.T) {
	d := order.NewDraft(time.Now())
	id := uuid.New()
	d.SetQuantity(id, "8", 10)
	d.ApplyStockChange(id, 5)
	d.ApplyStockChange(id, 2)

	adjustments := d.DrainAdjustments()
	require.Len(t, adjustments, 2)
	require.Empty(t, d.DrainAdjustments())
}

func TestCompleteMarksDraftCommitted(t *testing.T) {
	d := order.NewDraft(time.Now())
	id := uuid.New()
	d.SetQuantity(id, "8", 10)
	d.ApplyStockChange(id, 5)

	d.Complete()
	require.Empty(t, d.Snapshot())
	require.Empty(t, d.DrainAdjustments())
	require.Equal(t, order.StateCommitted, d.State())

	// Writing a quantity starts a fresh order.
	d.SetQuantity(id, "2", 10)
	require.Equal(t, order.StateComposing, d.State())
}

func TestRegistryFansStockChangesIntoAllDrafts(t *testing.T) {
	reg := order.NewRegistry(nil)
	id := uuid.New()

	d1 := reg.Create()
	d2 := reg.Create()
	d3 := reg.Create()
	d1.SetQuantity(id, "8", 10)
	d2.SetQuantity(id, "2", 10)

	adjusted := reg.ApplyStockChange(id, 4)
	require.Len(t, adjusted, 1)
	require.Contains(t, adjusted, d1.ID)
	require.Equal(t, 4, d1.Quantity(id))
	require.Equal(t, 2, d2.Quantity(id))
	require.Equal(t, 0, d3.Quantity(id))
}

func TestRegistryGetAndRemove(t *testing.T) {
	reg := order.NewRegistry(nil)
	d := reg.Create()

	got, err := reg.Get(d.ID)
	require.NoError(t, err)
	require.Same(t, d, got)

	reg.Remove(d.ID)
	_, err = reg.Get(d.ID)
	require.ErrorIs(t, err, order.ErrDraftNotFound)
}
