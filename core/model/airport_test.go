package model

import "testing"

func TestHeadroom(t *testing.T) {
	var capacity KitQuantities
	capacity.Set(KitEconomy, 40)
	a := &Airport{Code: "HUB1", Capacity: capacity}

	cases := []struct {
		name  string
		stock int
		want  int
	}{
		{"empty", 0, 40},
		{"partial", 25, 15},
		{"full", 40, 0},
		{"overfull clamps to zero", 55, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Headroom(KitEconomy, tc.stock); got != tc.want {
				t.Fatalf("Headroom(%d) = %d, want %d", tc.stock, got, tc.want)
			}
		})
	}
}
