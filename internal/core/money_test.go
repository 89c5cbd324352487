package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"150.50", 15050, false},
		{"150,50", 15050, false},
		{"1200", 120000, false},
		{"0.01", 1, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{".50", 50, false},
		{"", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"12x", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestMoneyHalf(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  int64
	}{
		{"even amount", 10000, 5000},
		{"odd cents round up", 101, 51},
		{"single cent", 1, 1},
		{"zero", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Money{Cents: tc.cents}.Half()
			if got.Cents != tc.want {
				t.Errorf("Money{%d}.Half() = %d, want %d", tc.cents, got.Cents, tc.want)
			}
		})
	}
}

func TestMoneyFormat(t *testing.T) {
	if got := (Money{Cents: 15050}).Format(); got != "R$ 150.50" {
		t.Errorf("Format() = %q, want %q", got, "R$ 150.50")
	}
	if got := (Money{Cents: 5000}).Decimal(); got != "50.00" {
		t.Errorf("Decimal() = %q, want %q", got, "50.00")
	}
	if got := (Money{Cents: -101}).Decimal(); got != "-1.01" {
		t.Errorf("Decimal() = %q, want %q", got, "-1.01")
	}
}
