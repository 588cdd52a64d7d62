package ryzenadj

import "context"

// Runner invokes the external ryzenadj executable. Implementations spawn
// one short-lived child process per call and never retry.
type Runner interface {
	// DumpTable runs `<exe> --dump-table` and returns its stdout.
	DumpTable(ctx context.Context, exe string) (string, error)

	// ApplyParameters runs `<exe> --key=value ...` with one argument per
	// flag that has a non-empty value.
	ApplyParameters(ctx context.Context, exe string, flags []Flag) error
}

// Flag is one tunable passed to ryzenadj on the command line.
type Flag struct {
	Key   string
	Value string
}

// Arg renders the flag as ryzenadj expects it.
func (f Flag) Arg() string {
	return "--" + f.Key + "=" + f.Value
}

// Args renders flags as command-line arguments, dropping flags whose value
// is empty.
func Args(flags []Flag) []string {
	args := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.Key == "" || f.Value == "" {
			continue
		}
		args = append(args, f.Arg())
	}

	return args
}
