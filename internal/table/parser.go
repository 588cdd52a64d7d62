// Package table turns the text printed by `ryzenadj --dump-table` into
// named metric records.
//
// The dump is a banner followed by one row per register:
//
//	| 0x0144 | 0x41b40000 | 22.500 |
//
// Parsing never fails. Rows without three usable fields are dropped and a
// value column that is not a number becomes NaN for that row only.
package table

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultHeaderLines is the number of banner and column header lines
	// ryzenadj prints before the first register row. It is a property of
	// the tool's output format and must be revisited if that changes.
	DefaultHeaderLines = 3
	DefaultDelimiter   = "|"

	minFields = 3
)

type Parser struct {
	headerLines int
	delimiter   string
}

type Option func(*Parser)

// WithHeaderLines overrides the number of leading lines to skip.
func WithHeaderLines(n int) Option {
	return func(p *Parser) {
		if n >= 0 {
			p.headerLines = n
		}
	}
}

// WithDelimiter overrides the column delimiter.
func WithDelimiter(d string) Option {
	return func(p *Parser) {
		if d != "" {
			p.delimiter = d
		}
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		headerLines: DefaultHeaderLines,
		delimiter:   DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse parses raw with the default header count and delimiter.
func Parse(raw string) *Snapshot {
	return NewParser().Parse(raw)
}

func (p *Parser) Parse(raw string) *Snapshot {
	snap := Empty()

	lines := strings.Split(raw, "\n")
	if len(lines) <= p.headerLines {
		return snap
	}

	for _, line := range lines[p.headerLines:] {
		rec, ok := p.parseRow(line)
		if !ok {
			continue
		}

		if _, seen := snap.records[rec.Name]; !seen {
			snap.order = append(snap.order, rec.Name)
		}
		snap.records[rec.Name] = rec
	}

	return snap
}

func (p *Parser) parseRow(line string) (Record, bool) {
	fields := make([]string, 0, minFields)
	for _, f := range strings.Split(line, p.delimiter) {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) < minFields {
		return Record{}, false
	}

	offset := strings.ToLower(fields[0])

	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		value = math.NaN()
	}
	if div, ok := scaleDivisors[offset]; ok {
		value /= div
	}

	key := KeyForOffset(offset)
	name := offset
	if key != KeyUnknown {
		name = key.String()
	}

	return Record{
		Key:    key,
		Name:   name,
		Offset: offset,
		RawHex: fields[1],
		Value:  value,
		Unit:   ClassifyUnit(name),
	}, true
}
