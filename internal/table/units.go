package table

import "strings"

const (
	UnitPower       = "W"
	UnitCurrent     = "A"
	UnitTemperature = "°C"
	UnitFrequency   = "MHz"
)

// unitClasses are checked in order; the first class with a keyword that
// is a substring of the metric name wins.
var unitClasses = []struct {
	unit     string
	keywords []string
}{
	{UnitPower, []string{"ppt", "stapm", "power"}},
	{UnitCurrent, []string{"tdc", "edc", "current"}},
	{UnitTemperature, []string{"thm", "stt", "temp", "tctl"}},
	{UnitFrequency, []string{"clk", "freq"}},
}

// ClassifyUnit derives a display unit from a metric name.
func ClassifyUnit(name string) string {
	name = strings.ToLower(name)
	for _, class := range unitClasses {
		for _, kw := range class.keywords {
			if strings.Contains(name, kw) {
				return class.unit
			}
		}
	}

	return ""
}
