package roster

// AreaNeed 单个区域需要的人数
type AreaNeed struct {
	AreaID  string `json:"area_id"`
	Workers int    `json:"workers"`
}

// NeedsByArea 按区域统计所需人数，计数规则与 GenerateTasks 一致但不生成任务标识
func NeedsByArea(areas []AreaConfig, opts SpecialAreaOptions) []AreaNeed {
	d9, d10 := specialZones(opts)
	out := []AreaNeed{
		{AreaID: AreaD9, Workers: zoneCount(d9)},
		{AreaID: AreaD10, Workers: zoneCount(d10)},
	}

	seen := map[string]bool{AreaD9: true, AreaD10: true, AreaUnassigned: true}
	for _, a := range areas {
		if a.Cabins <= 0 || seen[a.ID] {
			continue
		}
		seen[a.ID] = true

		n := 0
		for _, sz := range areaSections(a) {
			n += sz.count
		}
		out = append(out, AreaNeed{AreaID: a.ID, Workers: n})
	}
	return out
}

// WorkersNeeded 配置所需的总人数
func WorkersNeeded(areas []AreaConfig, opts SpecialAreaOptions) int {
	total := 0
	for _, n := range NeedsByArea(areas, opts) {
		total += n.Workers
	}
	return total
}

func zoneCount(sections []zoneSection) int {
	n := 0
	for _, s := range sections {
		n += len(s.tasks)
	}
	return n
}
