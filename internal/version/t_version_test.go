package version

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_version01(tst *testing.T) {

	chk.PrintTitle("version01. banner")

	s := String()
	if !strings.HasPrefix(s, "gotno v"+Version) || !strings.Contains(s, GitCommit) {
		tst.Errorf("unexpected version banner %q", s)
	}
}
