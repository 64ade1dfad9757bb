package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	idx := strings.LastIndexByte(f, '.')
	if idx < 0 {
		return f, ""
	}
	return f[:idx], f[idx+1:]
}

// localName is the override file that sits next to `name`: dir/tracker.json5
// becomes dir/tracker.local.json5.
func localName(name string) string {
	prefix, ext := splitExt(filepath.Base(name))
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))
}

// readLayer decodes the json5 file at path into out, found is false if there is
// no such file or it is empty.
func readLayer[T any](path string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a json5 configuration file, `name` must carry its extension.
// A sibling <name>.local.<ext> file, if present, is merged on top of it: every
// non zero value it sets wins. os.ErrNotExist is returned if neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := readLayer(name, &out)
	if err != nil {
		return out, err
	}

	var override T
	local := localName(name)
	foundLocal, err := readLayer(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, fmt.Errorf("merge %s: %w", local, err)
		}
		slog.Info("merging config with local overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively calls ReadConfig in the working directory and each of its
// parents until a configuration file matching the name is found.
func ReadRecursively[T any](name string) (T, error) {
	var out T

	current, err := os.Getwd()
	if err != nil {
		return out, err
	}
	for {
		out, err = ReadConfig[T](filepath.Join(current, name))
		if !os.IsNotExist(err) {
			return out, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return out, os.ErrNotExist
		}
		current = parent
	}
}
