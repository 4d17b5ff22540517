//go:build !windows

package astispeak

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

func (s *Speaker) exec(name string, args ...string) (err error) {
	// Binary path
	if s.o.BinaryDirPath != "" {
		name = filepath.Join(s.o.BinaryDirPath, name)
	}

	// Init cmd
	cmd := exec.Command(name, args...)

	// Exec
	astilog.Debugf("astispeak: executing %s", strings.Join(cmd.Args, " "))
	var b []byte
	if b, err = cmd.CombinedOutput(); err != nil {
		err = errors.Wrapf(err, "astispeak: running %s failed with combined output %s", strings.Join(cmd.Args, " "), b)
		return
	}
	return
}
