// Package paramfile rewrites numeric macro definitions in the C header that
// the external build reads its compile-time parameters from.
package paramfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	perrors "pirbench/internal/errors"
)

// Macro names understood by the benchmark build.
const (
	SizeExponentMacro = "N_VALUE"
	RecordSizeMacro   = "D_VALUE"
	BasisMacro        = "BASIS_VALUE"
)

// Define is one `#define NAME VALUE` assignment.
type Define struct {
	Name  string
	Value int
}

func (d Define) String() string {
	return fmt.Sprintf("#define %s %d", d.Name, d.Value)
}

func definePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`#define\s+` + regexp.QuoteMeta(name) + `\s+\d+`)
}

// Apply rewrites the first definition of each symbol in content.
// Symbols without a definition are reported in missing and left alone.
func Apply(content []byte, defs ...Define) (out []byte, missing []string) {
	out = content
	for _, d := range defs {
		re := definePattern(d.Name)
		loc := re.FindIndex(out)
		if loc == nil {
			missing = append(missing, d.Name)
			continue
		}
		replaced := make([]byte, 0, len(out))
		replaced = append(replaced, out[:loc[0]]...)
		replaced = append(replaced, d.String()...)
		replaced = append(replaced, out[loc[1]:]...)
		out = replaced
	}
	return out, missing
}

// Lookup returns the value of the first definition of name in content.
func Lookup(content []byte, name string) (int, bool) {
	re := regexp.MustCompile(`#define\s+` + regexp.QuoteMeta(name) + `\s+(\d+)`)
	m := re.FindSubmatch(content)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Rewrite applies defs to the file at path in place. All bytes outside the
// rewritten definitions are preserved. Callers must not run it concurrently
// with a build reading the same file.
func Rewrite(path string, defs ...Define) error {
	const op = "paramfile.rewrite"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return perrors.New(perrors.MissingArtifact, op, path, err)
		}
		return perrors.New(perrors.WriteFailure, op, path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return perrors.New(perrors.WriteFailure, op, path, err)
	}

	out, missing := Apply(content, defs...)
	for _, name := range missing {
		slog.Debug("macro not defined in parameter file", "path", path, "macro", name)
	}

	if err := writeAtomic(path, out, info.Mode().Perm()); err != nil {
		return perrors.New(perrors.WriteFailure, op, path, err)
	}
	return nil
}

// writeAtomic replaces path through a temp file in the same directory so a
// failed write never leaves a truncated header behind.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
