package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseArgsFilesOnly(t *testing.T) {
	o := parseArgs([]string{"a.d", "b.d"})
	if !reflect.DeepEqual(o.files, []string{"a.d", "b.d"}) {
		t.Errorf("files = %v, want [a.d b.d]", o.files)
	}
}

func TestParseArgsRecognizesAllFlags(t *testing.T) {
	o := parseArgs([]string{"--help", "--check", "--lexer", "--locators", "--ast", "main.d"})
	if !o.help || !o.checkOnly || !o.lexOnly || !o.showLocators || !o.showAST {
		t.Errorf("flags not all set: %+v", o)
	}
	if !reflect.DeepEqual(o.files, []string{"main.d"}) {
		t.Errorf("files = %v, want [main.d]", o.files)
	}
}

func TestParseArgsShortFlags(t *testing.T) {
	o := parseArgs([]string{"-h", "-c", "-L", "-l", "-a"})
	if !o.help || !o.checkOnly || !o.lexOnly || !o.showLocators || !o.showAST {
		t.Errorf("short flags not all set: %+v", o)
	}
}

func TestParseArgsHistoryFlagSetsDefaultCount(t *testing.T) {
	o := parseArgs([]string{"--history"})
	if o.showHistory != 20 {
		t.Errorf("showHistory = %d, want 20", o.showHistory)
	}
}

func TestParseArgsEndOfFlagsMarkerTreatsRestAsFiles(t *testing.T) {
	o := parseArgs([]string{"--", "--help", "-c.d"})
	if o.help {
		t.Error("--help after -- should be treated as a filename, not a flag")
	}
	if !reflect.DeepEqual(o.files, []string{"--help", "-c.d"}) {
		t.Errorf("files = %v, want [--help -c.d]", o.files)
	}
}

func TestParseArgsUnknownFlagLikeTokenTreatedAsFile(t *testing.T) {
	o := parseArgs([]string{"--weird-flag"})
	if !reflect.DeepEqual(o.files, []string{"--weird-flag"}) {
		t.Errorf("files = %v, want [--weird-flag] (unrecognized tokens fall through to files)", o.files)
	}
}

func TestResolveColorAlwaysAndNever(t *testing.T) {
	if !resolveColor("always") {
		t.Error(`resolveColor("always") = false, want true`)
	}
	if resolveColor("never") {
		t.Error(`resolveColor("never") = true, want false`)
	}
}

func TestUsageMentionsEveryFlag(t *testing.T) {
	u := usage()
	for _, flag := range []string{"--help", "--check", "--lexer", "--locators", "--ast", "--history"} {
		if !strings.Contains(u, flag) {
			t.Errorf("usage() missing %q:\n%s", flag, u)
		}
	}
}
