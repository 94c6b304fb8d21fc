package util

import (
	"maps"
	"os"
	"slices"
)

// MergeEnv appends extra to the process environment in key order. Entries
// later in the list win, so extra overrides inherited values.
func MergeEnv(extra map[string]string) []string {
	env := append([]string{}, os.Environ()...)
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, k+"="+extra[k])
	}
	return env
}
