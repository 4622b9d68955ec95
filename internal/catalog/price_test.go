package catalog

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"199.00", 19900},
		{"49.5", 4950},
		{"199", 19900},
		{"1,199.00", 119900},
		{"0.99", 99},
		{".50", 50},
		{"12.345", 1234},
		{"-5.00", -500},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.raw)
		if err != nil {
			t.Fatalf("ParsePrice(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePrice(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"abc", "19.x9", "$19.00"} {
		if _, err := ParsePrice(raw); err == nil {
			t.Fatalf("ParsePrice(%q) should return an error", raw)
		}
	}
}
