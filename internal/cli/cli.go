// Package cli parses gpcat's command line, grounded on the teacher's
// Args type (util/cli.go): positional action + "--flag=value" pairs +
// directory operands, generalized to this tool's single "scan" action.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Args is the parsed command line: an action, a flag map, and the
// directory operands that followed it.
type Args struct {
	Action string
	flags  map[string]string
	dirs   []string
}

func (a Args) String() string {
	return fmt.Sprintf("Action: %s\nFlags: %v\nDirs: %v", a.Action, a.flags, a.dirs)
}

// GetFlag returns a "--key=value" flag's value, or "" if absent.
func (a Args) GetFlag(key string) string {
	return a.flags[key]
}

// GetFlagDefault returns a flag's value, or def if the flag was absent.
func (a Args) GetFlagDefault(key, def string) string {
	if v, ok := a.flags[key]; ok {
		return v
	}
	return def
}

// Root returns the Takeout root directory operand.
func (a Args) Root() string {
	if len(a.dirs) == 0 {
		return ""
	}
	return a.dirs[0]
}

var flagRE = regexp.MustCompile(`^--[^=]+=.*$`)

// Parse parses os.Args-style arguments ([0] is the program name).
//
// Usage: gpcat scan [--flag=value ...] <takeout_root>
func Parse(args []string) (Args, error) {
	a := formatArgs(args)
	return validate(a)
}

func formatArgs(args []string) Args {
	var a Args
	a.flags = make(map[string]string)

	if len(args) > 1 {
		a.Action = args[1]
	}
	for _, arg := range args[min(2, len(args)):] {
		if flagRE.MatchString(arg) {
			key, value, _ := strings.Cut(arg, "=")
			a.flags[strings.TrimPrefix(key, "--")] = value
		} else {
			a.dirs = append(a.dirs, arg)
		}
	}
	return a
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func validate(a Args) (Args, error) {
	switch a.Action {
	case "scan":
		if len(a.dirs) != 1 {
			return Args{}, errors.New("scan requires exactly one directory: the Takeout root")
		}
		info, err := os.Stat(a.dirs[0])
		if err != nil {
			return Args{}, fmt.Errorf("takeout root %s: %w", a.dirs[0], err)
		}
		if !info.IsDir() {
			return Args{}, fmt.Errorf("takeout root %s is not a directory", a.dirs[0])
		}
		abs, err := filepath.Abs(a.dirs[0])
		if err != nil {
			return Args{}, err
		}
		a.dirs[0] = abs
		return a, nil
	case "help", "":
		printUsage()
		os.Exit(0)
		return a, nil
	default:
		return Args{}, fmt.Errorf("unknown action %q", a.Action)
	}
}

func printUsage() {
	fmt.Println("Usage: gpcat scan [--catalog=path] [--worker-threads=N] [--worker-processes=N] <takeout_root>")
}
