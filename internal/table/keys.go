package table

// MetricKey identifies a register the dump is known to contain. Registers
// that are not in the name table parse as KeyUnknown and keep their raw
// offset as name, so new ryzenadj releases degrade gracefully.
type MetricKey int

const (
	KeyUnknown MetricKey = iota
	KeyParam0
	KeyParam4
	KeyParam8
	KeyParamC
	KeyParam10
	KeyParam14
	KeyPPTAPU
	KeyTDCVDD
	KeyTDCSOC
	KeyEDCVDD
	KeyEDCSOC
	KeySTAPMValue
	KeyPPTFast
	KeyPPTSlow
	KeyTHMCore
	KeySTTAPU
	KeySTTDGPU
)

type keyInfo struct {
	offset string
	name   string
}

var keyTable = map[MetricKey]keyInfo{
	KeyParam0:     {"0x0000", "param-0"},
	KeyParam4:     {"0x0004", "param-4"},
	KeyParam8:     {"0x0008", "param-8"},
	KeyParamC:     {"0x000c", "param-c"},
	KeyParam10:    {"0x0010", "param-10"},
	KeyParam14:    {"0x0014", "param-14"},
	KeyPPTAPU:     {"0x0018", "ppt-apu"},
	KeyTDCVDD:     {"0x0020", "tdc-vdd"},
	KeyTDCSOC:     {"0x0028", "tdc-soc"},
	KeyEDCVDD:     {"0x0030", "edc-vdd"},
	KeyEDCSOC:     {"0x0038", "edc-soc"},
	KeySTAPMValue: {"0x0144", "stapm-value"},
	KeyPPTFast:    {"0x0150", "ppt-fast"},
	KeyPPTSlow:    {"0x0154", "ppt-slow"},
	KeyTHMCore:    {"0x02a4", "thm-core"},
	KeySTTAPU:     {"0x0294", "stt-apu"},
	KeySTTDGPU:    {"0x0060", "stt-dgpu"},
}

var (
	keysByOffset = make(map[string]MetricKey, len(keyTable))
	keysByName   = make(map[string]MetricKey, len(keyTable))
)

func init() {
	for k, info := range keyTable {
		keysByOffset[info.offset] = k
		keysByName[info.name] = k
	}
}

// String returns the stable metric name, or "unknown".
func (k MetricKey) String() string {
	if info, ok := keyTable[k]; ok {
		return info.name
	}

	return "unknown"
}

// Offset returns the register offset of a known key.
func (k MetricKey) Offset() string {
	return keyTable[k].offset
}

// KeyForOffset resolves a lowercase offset to its key.
func KeyForOffset(offset string) MetricKey {
	return keysByOffset[offset]
}

// KeyForName resolves a stable metric name to its key.
func KeyForName(name string) MetricKey {
	return keysByName[name]
}

// scaleDivisors corrects registers that ryzenadj reports in finer units
// than the ones shown. 0x0144 (STAPM value) is reported in tenths of a watt.
var scaleDivisors = map[string]float64{
	"0x0144": 10,
}
