package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// sizePresets are the named pattern widths in stitches.
var sizePresets = []struct {
	name    string
	columns int
}{
	{"small", 50},
	{"medium", 100},
	{"large", 150},
	{"xlarge", 200},
}

// sizeValue is a pflag.Value accepting a preset name or a positive column
// count.
type sizeValue int

func (s *sizeValue) String() string {
	return strconv.Itoa(int(*s))
}

func (s *sizeValue) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, p := range sizePresets {
		if v == p.name {
			*s = sizeValue(p.columns)
			return nil
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("size must be a positive integer or one of %s", presetNames())
	}
	*s = sizeValue(n)
	return nil
}

func (s *sizeValue) Type() string {
	return "size"
}

func presetNames() string {
	names := make([]string, len(sizePresets))
	for i, p := range sizePresets {
		names[i] = fmt.Sprintf("%s (%d)", p.name, p.columns)
	}
	return strings.Join(names, ", ")
}
