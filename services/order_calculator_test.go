package services

import (
	"testing"

	"github.com/platoo/order-service/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priced(id, price string) models.CatalogEntry {
	return models.CatalogEntry{ID: id, Price: decimal.RequireFromString(price), IsAvailable: true}
}

func TestCalculateTotal(t *testing.T) {
	resolved := map[string]models.CatalogEntry{
		"m1": priced("m1", "10.00"),
		"m2": priced("m2", "2.50"),
		"m3": priced("m3", "1.005"),
		"m4": priced("m4", "0.004"),
	}

	tests := []struct {
		name      string
		requested []models.LineItemRequest
		wantTotal string
		wantLines int
		wantErr   error
	}{
		{
			name: "all resolved",
			requested: []models.LineItemRequest{
				{MenuItemID: "m1", Quantity: 2},
				{MenuItemID: "m2", Quantity: 1},
			},
			wantTotal: "22.50",
			wantLines: 2,
		},
		{
			name: "unresolved line is skipped",
			requested: []models.LineItemRequest{
				{MenuItemID: "m1", Quantity: 1},
				{MenuItemID: "gone", Quantity: 3},
			},
			wantTotal: "10.00",
			wantLines: 1,
		},
		{
			name: "ids compare case and space insensitive",
			requested: []models.LineItemRequest{
				{MenuItemID: " M1 ", Quantity: 1},
			},
			wantTotal: "10.00",
			wantLines: 1,
		},
		{
			name: "nothing resolved",
			requested: []models.LineItemRequest{
				{MenuItemID: "gone", Quantity: 1},
			},
			wantErr: ErrNoResolvableItems,
		},
		{
			name: "sub-cent price is rounded before summing",
			requested: []models.LineItemRequest{
				{MenuItemID: "m3", Quantity: 3},
			},
			wantTotal: "3.03",
			wantLines: 1,
		},
		{
			name: "price below half a cent charges nothing",
			requested: []models.LineItemRequest{
				{MenuItemID: "m4", Quantity: 1},
			},
			wantErr: ErrNoResolvableItems,
		},
		{
			name: "non positive quantity contributes nothing",
			requested: []models.LineItemRequest{
				{MenuItemID: "m1", Quantity: 0},
				{MenuItemID: "m2", Quantity: -2},
			},
			wantErr: ErrNoResolvableItems,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, lines, err := CalculateTotal(tt.requested, resolved)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, lines)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(total), "total %s", total)
			assert.Len(t, lines, tt.wantLines)

			sum := decimal.Zero
			for _, line := range lines {
				sum = sum.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
			}
			assert.True(t, sum.Equal(total), "lines sum to %s, total %s", sum, total)
		})
	}
}

func TestCalculateTotal_OrderIndependent(t *testing.T) {
	resolved := map[string]models.CatalogEntry{
		"a": priced("a", "0.10"),
		"b": priced("b", "0.20"),
		"c": priced("c", "19.99"),
	}
	forward := []models.LineItemRequest{{MenuItemID: "a", Quantity: 3}, {MenuItemID: "b", Quantity: 7}, {MenuItemID: "c", Quantity: 1}}
	backward := []models.LineItemRequest{forward[2], forward[1], forward[0]}

	t1, _, err := CalculateTotal(forward, resolved)
	require.NoError(t, err)
	t2, _, err := CalculateTotal(backward, resolved)
	require.NoError(t, err)

	assert.True(t, t1.Equal(t2))
	assert.Equal(t, "21.69", t1.StringFixed(2))
}

func TestCalculateTotal_SnapshotsCatalogPrice(t *testing.T) {
	resolved := map[string]models.CatalogEntry{"m1": priced("m1", "4.255")}

	total, lines, err := CalculateTotal([]models.LineItemRequest{{MenuItemID: "m1", Quantity: 2}}, resolved)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "m1", lines[0].MenuItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 4.26, lines[0].Price)
	assert.Equal(t, "8.52", total.StringFixed(2))
}

func TestCalculateTotal_ExtraEntriesIgnored(t *testing.T) {
	resolved := map[string]models.CatalogEntry{
		"m1":     priced("m1", "5"),
		"unused": priced("unused", "100"),
	}

	total, lines, err := CalculateTotal([]models.LineItemRequest{{MenuItemID: "m1", Quantity: 1}}, resolved)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, "5.00", total.StringFixed(2))
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "partial", p.Name())

	p, err = PolicyByName(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, "strict", p.Name())

	_, err = PolicyByName("lenient")
	assert.Error(t, err)
}

func TestResolutionPolicies(t *testing.T) {
	unresolved := []UnresolvedItem{{MenuItemID: "x", Reason: ErrMenuItemNotFound}}

	assert.NoError(t, PartialResolution{}.Accept(2, unresolved))
	assert.NoError(t, StrictResolution{}.Accept(2, nil))

	err := StrictResolution{}.Accept(2, unresolved)
	assert.ErrorIs(t, err, ErrUnresolvedItems)
	assert.Contains(t, err.Error(), "x")
}
