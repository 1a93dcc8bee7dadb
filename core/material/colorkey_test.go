package material

import "testing"

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Black", "black"},
		{"  noir ", "black"},
		{"SCHWARZ", "black"},
		{"Grey", "gray"},
		{"gris", "gray"},
		{"Matte   Blue", "matte blue"},
		{"rouge", "red"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeColor(tc.in); got != tc.want {
			t.Errorf("NormalizeColor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSameColor(t *testing.T) {
	if !SameColor("Noir", "BLACK") {
		t.Errorf("noir and black should match")
	}
	if SameColor("red", "blue") {
		t.Errorf("red and blue must not match")
	}
}
