package wirehttp_test

import (
	"testing"

	"github.com/sagarc03/wirehttp"
)

func TestIsValidFileName(t *testing.T) {
	invalidUTF8 := string([]byte{'a', 0xff, 'b'})

	tt := []struct {
		Name string
		File string
		Want bool
	}{
		{Name: "plain", File: "test.txt", Want: true},
		{Name: "no extension", File: "foo", Want: true},
		{Name: "dashes and underscores", File: "a-b_c.d", Want: true},
		{Name: "leading dot", File: ".hidden", Want: true},
		{Name: "unicode", File: "héllo.txt", Want: true},

		{Name: "empty", File: "", Want: false},
		{Name: "single dot", File: ".", Want: false},
		{Name: "double dot", File: "..", Want: false},
		{Name: "double dot in name", File: "a..b", Want: false},
		{Name: "slash", File: "a/b", Want: false},
		{Name: "leading slash", File: "/etc", Want: false},
		{Name: "backslash", File: `a\b`, Want: false},
		{Name: "space", File: "a b", Want: false},
		{Name: "tab", File: "a\tb", Want: false},
		{Name: "newline", File: "a\nb", Want: false},
		{Name: "nul", File: "a\x00b", Want: false},
		{Name: "del", File: "a\x7fb", Want: false},
		{Name: "invalid utf-8", File: invalidUTF8, Want: false},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			if got := wirehttp.IsValidFileName(tc.File); got != tc.Want {
				t.Errorf("IsValidFileName(%q) = %v, want %v", tc.File, got, tc.Want)
			}
		})
	}
}
