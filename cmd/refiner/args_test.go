package main

import (
	"flag"
	"io"
	"reflect"
	"testing"
)

func newFlags() (*flag.FlagSet, *string, *bool) {
	fs := flag.NewFlagSet("refiner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mode := fs.String("mode", "", "")
	keep := fs.Bool("keep-temp", false, "")
	return fs, mode, keep
}

func TestParseArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		pos  []string
		mode string
		keep bool
	}{
		{"leading flags", []string{"-mode", "best-effort", "in.zip", "out"}, []string{"in.zip", "out"}, "best-effort", false},
		{"trailing flags", []string{"in.zip", "out", "-mode", "best-effort"}, []string{"in.zip", "out"}, "best-effort", false},
		{"interleaved", []string{"in.zip", "-keep-temp", "out", "2.5", "-mode=fail-fast"}, []string{"in.zip", "out", "2.5"}, "fail-fast", true},
		{"terminator", []string{"-keep-temp", "--", "in.zip", "-mode"}, []string{"in.zip", "-mode"}, "", true},
		{"none", nil, nil, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs, mode, keep := newFlags()
			pos, err := parseArgs(fs, tc.args)
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if !reflect.DeepEqual(pos, tc.pos) {
				t.Fatalf("positional %q, want %q", pos, tc.pos)
			}
			if *mode != tc.mode || *keep != tc.keep {
				t.Fatalf("mode=%q keep=%v", *mode, *keep)
			}
		})
	}
}

func TestParseArgs_UnknownTrailingFlag(t *testing.T) {
	fs, _, _ := newFlags()
	if _, err := parseArgs(fs, []string{"in.zip", "out", "-fast"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
