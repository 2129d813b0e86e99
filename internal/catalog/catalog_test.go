package catalog

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsFixedOrder(t *testing.T) {
	opts := Options()
	require.Equal(t, []Option{
		{Label: "MacBook Air", Value: 999},
		{Label: "MacBook Pro", Value: 1100},
		{Label: "Mac Mini", Value: 599},
	}, opts)

	// callers cannot mutate the catalog through the returned slice
	opts[0].Label = "changed"
	require.Equal(t, "MacBook Air", Options()[0].Label)
}

func TestSelectUsesLabelAndExactValueString(t *testing.T) {
	for i, o := range Options() {
		p, err := Select(i)
		require.NoError(t, err)
		require.Equal(t, o.Label, p.Name)
		require.Equal(t, strconv.Itoa(o.Value), p.Price)
	}

	_, err := Select(3)
	require.Error(t, err)
	_, err = Select(-1)
	require.Error(t, err)
}

func TestPriceValue(t *testing.T) {
	v, err := Product{Name: "Mac Mini", Price: "599"}.PriceValue()
	require.NoError(t, err)
	require.Equal(t, 599, v)

	_, err = Product{Name: "x", Price: "abc"}.PriceValue()
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "exact", input: "Mac Mini", want: "Mac Mini"},
		{name: "case insensitive", input: "macbook pro", want: "MacBook Pro"},
		{name: "typo", input: "macbok air", want: "MacBook Air"},
		{name: "too far", input: "toaster", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lookup(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Name)
		})
	}
}
