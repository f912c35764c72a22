package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v1.2.3"

	if got := String(); !strings.HasPrefix(got, "songmatch v1.2.3 (commit ") {
		t.Errorf("String() = %q", got)
	}
	if got := UserAgent(); !strings.HasPrefix(got, "songmatch/v1.2.3 ") {
		t.Errorf("UserAgent() = %q", got)
	}
}
