package telegram

import "strings"

// EscapeMarkdown 转义Markdown特殊字符，频道名可能带下划线和星号
func EscapeMarkdown(input string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"[", "\\[",
		"]", "\\]",
	)
	return replacer.Replace(input)
}
