package countries

import (
	"errors"
	"testing"
)

func TestNormalizeMatches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"United States", "United States"},
		{"united states", "United States"},
		{"USA", "United States"},
		{"us", "United States"},
		{"United States of America", "United States"},
		{"Germany", "Germany"},
		{"Germny", "Germany"},
		{"  France  ", "France"},
		{"CAN", "Canada"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if err != nil {
			t.Errorf("Normalize(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeNoMatch(t *testing.T) {
	for _, in := range []string{"Narnia", "Middle Earth", "", "   ", "zz"} {
		if _, err := Normalize(in); !errors.Is(err, ErrNoMatch) {
			t.Errorf("Normalize(%q) = %v, want ErrNoMatch", in, err)
		}
	}
}
