package img2ascii

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ColorMode is the user's color preference.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

var colorModeNames = [...]string{
	ColorAuto:   "auto",
	ColorAlways: "always",
	ColorNever:  "never",
}

// ParseColorMode resolves auto, always or never.
func ParseColorMode(name string) (ColorMode, error) {
	for m, n := range colorModeNames {
		if n == name {
			return ColorMode(m), nil
		}
	}
	return ColorAuto, &ConfigError{
		Field: "color mode",
		Value: name,
		Err:   errors.New("use auto|always|never"),
	}
}

func (m ColorMode) String() string {
	if m < 0 || int(m) >= len(colorModeNames) {
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
	return colorModeNames[m]
}

// Env looks up an environment variable. os.LookupEnv satisfies it.
type Env func(key string) (string, bool)

// ResolveColor decides whether output gets ANSI color. Explicit modes win;
// auto honors NO_COLOR, then CLICOLOR_FORCE, then stays off for files,
// dumb terminals and non-terminal stdout, and finally honors CLICOLOR=0.
func ResolveColor(mode ColorMode, env Env, toFile, stdoutIsTerminal bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if env == nil {
		env = func(string) (string, bool) { return "", false }
	}

	if _, ok := env("NO_COLOR"); ok {
		return false
	}
	if v, _ := env("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	if toFile {
		return false
	}
	if v, _ := env("TERM"); v == "dumb" {
		return false
	}
	if !stdoutIsTerminal {
		return false
	}
	if v, ok := env("CLICOLOR"); ok && v == "0" {
		return false
	}
	return true
}

// StdoutIsTerminal reports whether the process's stdout is a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
