package notify

import "testing"

func TestFlatten(t *testing.T) {
	cases := []struct {
		name string
		p    Payload
		want string
	}{
		{"full", Payload{Title: "Build", Message: "done", Subtitle: "main"}, "Build: done (main)"},
		{"no subtitle", Payload{Title: "Build", Message: "done"}, "Build: done"},
		{"message only", Payload{Message: "done"}, "done"},
		{"title only", Payload{Title: "Build"}, "Build"},
		{"empty", Payload{}, ""},
	}
	for _, tc := range cases {
		if got := tc.p.Flatten(); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`Test "quotes" and \backslashes`, `Test \"quotes\" and \\backslashes`},
		{"Line 1\nLine 2\tTabbed", "Line 1 Line 2 Tabbed"},
		{"carriage\r\nreturn", "carriage return"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeText(tc.in); got != tc.want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
