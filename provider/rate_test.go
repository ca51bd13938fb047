package provider

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRate_Valid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		rate Rate
		want bool
	}{
		{name: "test_valid_code_only", rate: Rate{Code: "USD"}, want: true},
		{name: "test_valid_currency_only", rate: Rate{Currency: "US Dollar"}, want: true},
		{name: "test_valid_prices_only", rate: Rate{Buy: "1.0", Sell: "1.1"}, want: false},
		{name: "test_valid_empty", rate: Rate{}, want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.want, tc.rate.Valid()); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestRate_Less(t *testing.T) {
	t.Parallel()

	rates := []Rate{
		{Order: DefaultOrder, Code: "AUD"},
		{Order: 2, Code: "USD"},
		{Order: 1, Code: "GBP"},
		{Order: 2, Code: "EUR"},
	}

	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].Less(rates[j])
	})

	want := []string{"GBP", "EUR", "USD", "AUD"}
	got := make([]string, 0, len(rates))
	for _, r := range rates {
		got = append(got, r.Code)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}
