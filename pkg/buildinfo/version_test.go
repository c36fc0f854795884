package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v1.2.3"

	if s := String(); !strings.Contains(s, "version: v1.2.3") {
		t.Errorf("String() = %q", s)
	}
	if tpl := Template(); !strings.HasPrefix(tpl, "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", tpl)
	}
	if Get().Version != "v1.2.3" {
		t.Errorf("Get() = %+v", Get())
	}
}
