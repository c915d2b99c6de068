package countries

import "testing"

func TestNames_Name(t *testing.T) {
	t.Parallel()

	n := New(map[string]string{"aus": "Australia (guest)"})
	tests := []struct {
		code string
		want string
	}{
		{"SWE", "Sweden"},
		{"se", "Sweden"},
		{" nld ", "Netherlands"},
		{"ENG", "England"},
		{"DEU", "West Germany"},
		{"DDR", "East Germany"},
		{"COD", "Zaire"},
		{"AUS", "Australia (guest)"},
		{"X1", "X1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.Name(tt.code); got != tt.want {
			t.Fatalf("Name(%q)=%q want %q", tt.code, got, tt.want)
		}
	}
}

func TestShowTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2024_grand_final", "2024 Grand Final"},
		{"semi-final__one", "Semi Final One"},
		{"___", "___"},
	}
	for _, tt := range tests {
		if got := ShowTitle(tt.in); got != tt.want {
			t.Fatalf("ShowTitle(%q)=%q want %q", tt.in, got, tt.want)
		}
	}
}
