package normalize

import "testing"

func TestRevenue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"150000", 150000},
		{"150,000", 150000},
		{"150000 đ", 150000},
		{"1.250.000 đ", 1.25},
		{"12.5", 12.5},
		{"-300", -300},
		{"-.5", -0.5},
		{".75", 0.75},
		{"VND 2000", 2000},
		{"", 0},
		{"không có", 0},
		{"-", 0},
		{".", 0},
		{"--5", 0},
		{"-0", 0},
		{"12-3", 12},
	}
	for _, tt := range tests {
		if got := Revenue(tt.in); got != tt.want {
			t.Errorf("Revenue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
