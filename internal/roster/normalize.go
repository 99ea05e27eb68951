package roster

import (
	"strings"
	"unicode"
)

// NormalizeWorkerName 规范化员工姓名：去首尾空白、转大写、去标点、合并连续空白
func NormalizeWorkerName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// nameVariations 返回姓名的词序变体：原顺序、整体反转、末词前置、首词后置
func nameVariations(normalized string) []string {
	words := strings.Fields(normalized)
	out := []string{strings.Join(words, " ")}
	if len(words) < 2 {
		return out
	}

	reversed := make([]string, len(words))
	for i, w := range words {
		reversed[len(words)-1-i] = w
	}
	candidates := []string{
		strings.Join(reversed, " "),
		words[len(words)-1] + " " + strings.Join(words[:len(words)-1], " "),
		strings.Join(words[1:], " ") + " " + words[0],
	}

	for _, c := range candidates {
		dup := false
		for _, o := range out {
			if o == c {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// taskSpellings 任务名的拼写归一替换，按顺序应用
var taskSpellings = []struct{ from, to string }{
	{"PEATUS", "PETAUS"},
	{"PYYHTINÄ", "PYYHINTÄ"},
	{"PYYHINTA", "PYYHINTÄ"},
}

// NormalizeTaskName 规范化任务名：去首尾空白、转大写、合并空白、应用拼写替换
func NormalizeTaskName(task string) string {
	s := strings.Join(strings.Fields(strings.ToUpper(task)), " ")
	for _, sp := range taskSpellings {
		s = strings.ReplaceAll(s, sp.from, sp.to)
	}
	return s
}
