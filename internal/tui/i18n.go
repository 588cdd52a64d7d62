package tui

// Language indexes match config.Languages.
const (
	LangEnglish = iota
	LangChinese
)

var chinese = map[string]string{
	"Welcome":  "欢迎",
	"Adjust":   "调节",
	"Monitor":  "监控",
	"Settings": "设置",

	"Welcome to ryzenctl": "欢迎使用 ryzenctl",
	"Use Adjust to configure parameters and Monitor to view metrics.": "使用“调节”配置参数，使用“监控”查看指标。",
	"Adjust RyzenAdj Parameters":                 "调节 RyzenAdj 参数",
	"Apply RyzenAdj":                             "应用 RyzenAdj",
	"CPU Usage":                                  "CPU 使用率",
	"History":                                    "历史",
	"Start with system":                          "开机启动",
	"Language":                                   "语言",
	"Theme":                                      "主题",
	"RyzenAdj Executable Path:":                  "RyzenAdj 可执行文件路径：",
	"Save":                                       "保存",
	"Settings saved":                             "设置已保存",
	"RyzenAdj Error:":                            "RyzenAdj 错误：",
	"Try running with administrator privileges.": "请尝试以管理员权限运行。",
	"Estimated value — not available from RyzenAdj": "估计值 — RyzenAdj 未提供",
}

// translate returns s in the given language, or s when no translation
// exists.
func translate(lang int, s string) string {
	if lang == LangChinese {
		if t, ok := chinese[s]; ok {
			return t
		}
	}

	return s
}
