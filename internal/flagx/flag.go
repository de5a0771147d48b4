// Package flagx separates the configuration flags owned by the config loader
// from the rest of the command line, which belongs to the command tree.
package flagx

import (
	"flag"
	"strings"
)

// ConfigFileFlags are the flags naming a JSON configuration file.
var ConfigFileFlags = []string{"-c", "-config"}

// Split walks args once and returns two slices: the arguments belonging to
// the listed flags (with their values) and everything else, both in their
// original order.
//
// valueFlags take a value either as "-f value" or "-f=value". boolFlags
// never consume the following argument; "-f" and "-f=false" are both kept.
func Split(args []string, valueFlags, boolFlags []string) (kept, rest []string) {
	values := toSet(valueFlags)
	bools := toSet(boolFlags)

	kept = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			_, isValue := values[name]
			_, isBool := bools[name]
			if isValue || isBool {
				kept = append(kept, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := bools[arg]; ok {
			kept = append(kept, arg)
			continue
		}

		if _, ok := values[arg]; ok {
			kept = append(kept, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				kept = append(kept, args[i+1])
				i++
			}
			continue
		}

		rest = append(rest, arg)
	}

	return kept, rest
}

// FilterArgs returns only the arguments belonging to the listed value flags.
func FilterArgs(args []string, valueFlags []string) []string {
	kept, _ := Split(args, valueFlags, nil)
	return kept
}

// JsonConfigFlag extracts the config file path given with -c or -config.
// It returns an empty string when neither is present.
func JsonConfigFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlags))

	return path
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
