package roster

import "strings"

// numberedBaseTasks 支持编号变体（"PESU 3"）的基础任务类型
var numberedBaseTasks = map[string]bool{
	"ROSKAT":               true,
	"IMURI":                true,
	"PESU":                 true,
	"PETAUS":               true,
	"PETAUS DOUBLE":        true,
	"PYYHINTÄ":             true,
	"PYYHINTÄ + INVA JAKO": true,
	"REP":                  true,
}

// rawTaskAlternatives 标准任务名 → 等价的替代写法
var rawTaskAlternatives = map[string][]string{
	"KIDS+HANGOUT+ PORTAAT IMURI":   {"KIDS+HANGOUT+PORTAAT IMURI", "KIDS HANGOUT PORTAAT IMURI"},
	"IMURI LOUNGE ->":               {"IMURI LOUNGE", "LOUNGE IMURI"},
	"IMURI CASINO ->":               {"IMURI CASINO", "CASINO IMURI"},
	"WC:T 10+11":                    {"WC 10+11", "WC:T 10 + 11"},
	"VISTA WC:t 10+11":              {"VISTA WC 10+11", "VISTA WC:T 10+11"},
	"SMOKING ROOM + KONE":           {"SMOKING ROOM KONE"},
	"BACKSTAGE WC:T+ PYYHINTÄ":      {"BACKSTAGE WC PYYHINTÄ", "BACKSTAGE WC:T PYYHINTÄ"},
	"PETAUS DOUBLE":                 {"PEATUS DOUBLE"},
	"PETAUS":                        {"PEATUS"},
	"PYYHINTÄ":                      {"PYYHTINÄ", "PYYHINTA"},
	"KEULAPORTAAT PYYHINTÄ + AULAT": {"KEULAPORTAAT PYYHINTÄ AULAT"},
	"KESKIPORTAAT PYYHINTÄ + AULAT": {"KESKIPORTAAT PYYHINTÄ AULAT"},
	"PERÄPORTAAT PYYHINTÄ + AULAT":  {"PERÄPORTAAT PYYHINTÄ AULAT"},
	"REP+SETIT":                     {"REP + SETIT", "REP SETIT"},
	"PYYHINTÄ+JAKO":                 {"PYYHINTÄ + JAKO", "PYYHINTÄ JAKO"},
	"PYYHINTÄ + INVA JAKO":          {"PYYHINTÄ INVA JAKO"},
	"ROSKAT+IMURI":                  {"ROSKAT + IMURI", "ROSKAT IMURI"},
	"WC:T TORGET+PYYHINTÄ":          {"WC:T TORGET PYYHINTÄ", "WC TORGET PYYHINTÄ"},
	"KIDS+HANGOUT+TORGET PYYHINTÄ":  {"KIDS HANGOUT TORGET PYYHINTÄ"},
	"KONFFA WC:t":                   {"KONFFA WC"},
	"MARKET WC:t":                   {"MARKET WC"},
	"MATTOPESU + REP":               {"MATTOPESU REP", "MATTOPESU", "REP"},
}

// taskAlternatives 规范化后的替代写法表，键与值都经过 NormalizeTaskName
var taskAlternatives = buildTaskAlternatives()

func buildTaskAlternatives() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(rawTaskAlternatives))
	for canonical, alts := range rawTaskAlternatives {
		key := NormalizeTaskName(canonical)
		set := out[key]
		if set == nil {
			set = make(map[string]bool, len(alts))
			out[key] = set
		}
		for _, a := range alts {
			if n := NormalizeTaskName(a); n != key {
				set[n] = true
			}
		}
	}
	return out
}

// TaskMatches 判断任务是否满足某条偏好（严格匹配，不做子串匹配）
//
// 匹配顺序：
//  1. 规范化后完全相等
//  2. 编号变体："<BASE> <N>" 与偏好 BASE 匹配，BASE 须在白名单内
//  3. 固定的替代写法表，双向检查
func TaskMatches(task, preference string) bool {
	t := NormalizeTaskName(task)
	p := NormalizeTaskName(preference)
	if t == "" || p == "" {
		return false
	}

	if t == p {
		return true
	}

	if base, ok := splitOrdinal(t); ok && numberedBaseTasks[base] && base == p {
		return true
	}

	if taskAlternatives[t][p] || taskAlternatives[p][t] {
		return true
	}

	return false
}

// BaseTaskType 去掉任务名末尾的序号与括号中的区域限定
// "PESU 2" → "PESU"，"MATTOPESU + REP (8000+8300)" → "MATTOPESU + REP"
func BaseTaskType(name string) string {
	if open := strings.Index(name, "("); open >= 0 && strings.Contains(name[open:], ")") {
		if base := strings.TrimSpace(name[:open]); base != "" {
			return base
		}
	}

	trimmed := strings.TrimSpace(name)
	if base, ok := splitOrdinal(trimmed); ok {
		return base
	}
	return trimmed
}

// splitOrdinal 拆分 "<BASE> <N>"，N 为纯数字
func splitOrdinal(s string) (string, bool) {
	idx := strings.LastIndex(s, " ")
	if idx <= 0 {
		return "", false
	}
	last := s[idx+1:]
	if last == "" {
		return "", false
	}
	for _, r := range last {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return strings.TrimSpace(s[:idx]), true
}
