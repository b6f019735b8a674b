package envutil

import "testing"

func TestString(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_STR", "  value  ")
	if got := String("ENVUTIL_TEST_STR", "def"); got != "value" {
		t.Fatalf("String = %q, want %q", got, "value")
	}
	t.Setenv("ENVUTIL_TEST_STR", "   ")
	if got := String("ENVUTIL_TEST_STR", "def"); got != "def" {
		t.Fatalf("String = %q, want default", got)
	}
}

func TestInt(t *testing.T) {
	cases := []struct {
		raw  string
		def  int
		want int
	}{
		{"42", 0, 42},
		{" 7 ", 0, 7},
		{"", 300, 300},
		{"not-a-number", 300, 300},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_INT", tc.raw)
		if got := Int("ENVUTIL_TEST_INT", tc.def); got != tc.want {
			t.Fatalf("Int(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestBool(t *testing.T) {
	cases := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_BOOL", tc.raw)
		if got := Bool("ENVUTIL_TEST_BOOL", tc.def); got != tc.want {
			t.Fatalf("Bool(%q, %v) = %v, want %v", tc.raw, tc.def, got, tc.want)
		}
	}
}
