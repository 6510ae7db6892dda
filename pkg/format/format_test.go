package format

import "testing"

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"illegal chars", `a/b:c*d`, "a_b_c_d"},
		{"all reserved", `a\b/c:d*e?f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{"whitespace runs", "movie   name\t2024", "movie name 2024"},
		{"trim", "  padded  ", "padded"},
		{"clean", "already_clean.mkv", "already_clean.mkv"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFilename(tc.in); got != tc.want {
				t.Fatalf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 B"},
		{512, "512.00 B"},
		{1024, "1.00 KB"},
		{50 * 1024 * 1024, "50.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tc := range cases {
		if got := HumanBytes(tc.in); got != tc.want {
			t.Errorf("HumanBytes(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0s"},
		{5, "5s"},
		{65, "1m 5s"},
		{3600, "1h"},
		{3725, "1h 2m 5s"},
		{-3, "0s"},
	}
	for _, tc := range cases {
		if got := Seconds(tc.in); got != tc.want {
			t.Errorf("Seconds(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
