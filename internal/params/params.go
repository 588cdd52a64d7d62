// Package params is the catalog of ryzenadj parameters ryzenctl lets the
// user edit. The catalog is hand-authored and never changes at runtime.
package params

import (
	"fmt"
	"io"

	"codeberg.org/mutker/ryzenctl/internal/table"
)

// Param is one tunable ryzenadj flag.
type Param struct {
	Key         string
	Description string
	// Metric is the dump register that reports the live value this
	// parameter governs, or KeyUnknown when the dump has none.
	Metric table.MetricKey
}

// Group is a named, ordered set of parameters.
type Group struct {
	Name   string
	Params []Param
}

var catalog = []Group{
	{
		Name: "Power Limits",
		Params: []Param{
			{"stapm", "Sustained Power Limit (STAPM_LIMIT)", table.KeySTAPMValue},
			{"fast", "PPT Limit Fast (PPT_FAST_LIMIT)", table.KeyPPTFast},
			{"slow", "PPT Limit Slow (PPT_SLOW_LIMIT)", table.KeyPPTSlow},
		},
	},
	{
		Name: "Current Limits",
		Params: []Param{
			{"vrm", "VRM Current Limit (TDC_VDD_LIMIT)", table.KeyTDCVDD},
			{"vrmsoc", "VRM SoC Current Limit (TDC_SOC_LIMIT)", table.KeyTDCSOC},
			{"edc", "EDC Current Limit VDD (EDC_VDD_LIMIT)", table.KeyEDCVDD},
			{"edcsoc", "EDC Current Limit SoC (EDC_SOC_LIMIT)", table.KeyEDCSOC},
		},
	},
	{
		Name: "Clocks",
		Params: []Param{
			{"max-socclk", "Max SoC Clock Frequency", table.KeyUnknown},
			{"min-socclk", "Min SoC Clock Frequency", table.KeyUnknown},
			{"max-gfxclk", "Max GFX Clock Frequency", table.KeyUnknown},
			{"min-gfxclk", "Min GFX Clock Frequency", table.KeyUnknown},
		},
	},
	{
		Name: "Temperatures",
		Params: []Param{
			{"tctl-temp", "Tctl Temperature Limit", table.KeyTHMCore},
			{"apu-skin-temp", "APU Skin Temp Limit", table.KeySTTAPU},
			{"dgpu-skin-temp", "dGPU Skin Temp Limit", table.KeySTTDGPU},
		},
	},
}

var (
	byKey = map[string]Param{}
	order = map[string]int{}
)

func init() {
	for _, g := range catalog {
		for _, p := range g.Params {
			order[p.Key] = len(byKey)
			byKey[p.Key] = p
		}
	}
}

// Groups returns the catalog. The returned slices are copies.
func Groups() []Group {
	out := make([]Group, len(catalog))
	for i, g := range catalog {
		out[i] = Group{Name: g.Name, Params: append([]Param(nil), g.Params...)}
	}

	return out
}

// Keys returns every parameter key in catalog order.
func Keys() []string {
	keys := make([]string, 0, len(byKey))
	for _, g := range catalog {
		for _, p := range g.Params {
			keys = append(keys, p.Key)
		}
	}

	return keys
}

// Lookup finds a parameter by key.
func Lookup(key string) (Param, bool) {
	p, ok := byKey[key]
	return p, ok
}

// Known reports whether key is in the catalog.
func Known(key string) bool {
	_, ok := byKey[key]
	return ok
}

// Position returns the catalog index of key, or -1.
func Position(key string) int {
	if i, ok := order[key]; ok {
		return i
	}

	return -1
}

// Format writes the catalog as a human-readable listing.
func Format(w io.Writer) error {
	if _, err := fmt.Fprint(w, "Available RyzenAdj parameters:\n\n"); err != nil {
		return err
	}
	for _, g := range catalog {
		if _, err := fmt.Fprintf(w, "[%s]\n", g.Name); err != nil {
			return err
		}
		for _, p := range g.Params {
			if _, err := fmt.Fprintf(w, "  --%-16s %s\n", p.Key, p.Description); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
