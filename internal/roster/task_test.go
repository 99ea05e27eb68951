package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// areaTasks 取出某个区域的任务名（生成顺序）
func areaTasks(plan *TaskPlan, areaID string) []string {
	var out []string
	for _, t := range plan.Tasks() {
		if t.AreaID == areaID {
			out = append(out, t.Name)
		}
	}
	return out
}

func areaKeys(plan *TaskPlan, areaID string) []string {
	var out []string
	for _, t := range plan.Tasks() {
		if t.AreaID == areaID {
			out = append(out, t.Key.String())
		}
	}
	return out
}

func TestGenerateTasks_SpecialZones(t *testing.T) {
	plan := GenerateTasks(nil, SpecialAreaOptions{})
	require.Len(t, plan.Areas, 2)
	assert.Equal(t, AreaD9, plan.Areas[0].AreaID)
	assert.Equal(t, AreaD10, plan.Areas[1].AreaID)
	assert.Equal(t, []string{"TORGET", "CONFERNCE", "PORTAIKOT"}, plan.Areas[0].Headings())
	assert.Equal(t, []string{"MARKET", "KEITTIÖ", "VISTA", "EXTRAS"}, plan.Areas[1].Headings())
	assert.Equal(t, 25, plan.Count(), "D9 11 项 + D10 14 项")

	keys := areaKeys(plan, AreaD9)
	assert.Equal(t, "TORGET|KIDS+HANGOUT+ PORTAAT IMURI|0", keys[0])
	assert.Equal(t, "CONFERNCE|KONFFA WC:t|0", keys[4])

	var wipe []string
	for _, task := range plan.Tasks() {
		switch task.Category {
		case CategoryWipe:
			wipe = append(wipe, task.AreaID+" / "+task.Key.String())
		case CategoryWash:
			t.Errorf("特殊区域不应有 PESU 任务: %s", task.Name)
		}
	}
	assert.Equal(t, []string{
		"D9 / TORGET|WC:T TORGET+PYYHINTÄ|2",
		"D9 / TORGET|KIDS+HANGOUT+TORGET PYYHINTÄ|3",
		"D9 / PORTAIKOT|KEULAPORTAAT PYYHINTÄ + AULAT|1",
		"D9 / PORTAIKOT|KESKIPORTAAT PYYHINTÄ + AULAT|3",
		"D9 / PORTAIKOT|PERÄPORTAAT PYYHINTÄ + AULAT|5",
		"D10 / MARKET|MARKET PYYHINTÄ|2",
		"D10 / VISTA|BACKSTAGE WC:T+ PYYHINTÄ|2",
	}, wipe)
}

func TestGenerateTasks_SpecialOptions(t *testing.T) {
	plan := GenerateTasks(nil, SpecialAreaOptions{
		Lattiakaivot:   true,
		KonffaImuri:    true,
		VistaDeck:      true,
		Terrace:        true,
		TerraceWorkers: 2,
	})
	assert.Equal(t, 30, plan.Count())

	d10 := areaKeys(plan, AreaD10)
	assert.Contains(t, d10, "KEITTIÖ|LATTIAKAIVOT|2")
	assert.Contains(t, d10, "VISTA|VISTA DECK|4")
	assert.Contains(t, d10, "EXTRAS|TERRACE|4")
	assert.Contains(t, d10, "EXTRAS|TERRACE|5")
	assert.Contains(t, areaKeys(plan, AreaD9), "CONFERNCE|KONFFA IMURI|1")

	single := GenerateTasks(nil, SpecialAreaOptions{Terrace: true, TerraceWorkers: 1})
	assert.Equal(t, 26, single.Count())
}

func TestGenerateTasks_SmallArea(t *testing.T) {
	plan := GenerateTasks([]AreaConfig{{ID: "Z", Cabins: 13}}, SpecialAreaOptions{})

	assert.Equal(t, []string{"ROSKAT+IMURI", "PESU", "PETAUS", "PYYHINTÄ"}, areaTasks(plan, "Z"))
	assert.Equal(t, []string{"ROSKAT+IMURI|0", "PESU|0", "PETAUS|0", "PYYHINTÄ|0"}, areaKeys(plan, "Z"))
}

func TestGenerateTasks_TrashVacuumSizing(t *testing.T) {
	small := GenerateTasks([]AreaConfig{{ID: "Z", Cabins: 26}}, SpecialAreaOptions{})
	assert.Equal(t, "ROSKAT+IMURI", areaTasks(small, "Z")[0])

	big := GenerateTasks([]AreaConfig{{ID: "Z", Cabins: 100}}, SpecialAreaOptions{})
	names := areaTasks(big, "Z")
	assert.Equal(t, []string{"ROSKAT 1", "ROSKAT 2", "IMURI"}, names[:3])
}

func TestGenerateTasks_WashSizing(t *testing.T) {
	plan := GenerateTasks([]AreaConfig{{ID: "Z", Cabins: 40}}, SpecialAreaOptions{})

	var wash []Task
	for _, task := range plan.Tasks() {
		if task.Category == CategoryWash {
			wash = append(wash, task)
		}
	}
	require.Len(t, wash, 4)
	for i, task := range wash {
		assert.Equal(t, []string{"PESU 1", "PESU 2", "PESU 3", "PESU 4"}[i], task.Name)
		assert.Equal(t, "PESU", task.BaseType)
		assert.Equal(t, i, task.Key.Ordinal)
	}
}

func TestGenerateTasks_BedMaking(t *testing.T) {
	plan := GenerateTasks([]AreaConfig{
		{ID: Area8000, Cabins: 50},
		{ID: Area8600, Cabins: 30, Beds: 46},
		{ID: Area5600, Cabins: 30, Beds: 61},
	}, SpecialAreaOptions{})

	for _, name := range areaTasks(plan, Area8000) {
		assert.NotContains(t, name, "PETAUS", "8000+8300 不安排铺床")
	}
	assert.Contains(t, areaTasks(plan, Area8600), "PETAUS DOUBLE 3", "46 床 / 22.5 向上取整为 3")
	assert.Contains(t, areaTasks(plan, Area5600), "PETAUS 3", "61 床 / 30 向上取整为 3")
}

func TestGenerateTasks_WipeVariants(t *testing.T) {
	plan := GenerateTasks([]AreaConfig{
		{ID: Area6500, Cabins: 120},
		{ID: Area8600, Cabins: 200},
		{ID: Area7600, Cabins: 200},
		{ID: Area5600, Cabins: 200},
	}, SpecialAreaOptions{})

	wipe := map[string][]string{}
	for _, task := range plan.Tasks() {
		if task.Category == CategoryWipe {
			wipe[task.AreaID] = append(wipe[task.AreaID], task.Name)
		}
	}
	assert.Equal(t, []string{"PYYHINTÄ + INVA JAKO 1", "PYYHINTÄ + INVA JAKO 2", "PYYHINTÄ + INVA JAKO 3"}, wipe[Area6500])
	assert.Equal(t, []string{"PYYHINTÄ+JAKO"}, wipe[Area8600])
	assert.Equal(t, []string{"PYYHINTÄ"}, wipe[Area7600])
	assert.Equal(t, []string{"PYYHINTÄ 1", "PYYHINTÄ 2", "PYYHINTÄ 3"}, wipe[Area5600])
}

func TestGenerateTasks_OverflowAndSuites(t *testing.T) {
	plan := GenerateTasks([]AreaConfig{
		{ID: Area8000, Cabins: 60, Full: true, AdditionalWorkers: 120},
		{ID: Area7500, Cabins: 60, Full: true, AdditionalWorkers: 120},
		{ID: Area8600, Cabins: 20, Suites: map[string]bool{"SUITE 8626": false, "SUITE 8827": true}},
	}, SpecialAreaOptions{})

	names := areaTasks(plan, Area8000)
	assert.Contains(t, names, "REP 3")
	assert.Contains(t, names, "SETIT")
	assert.Contains(t, names, "JAKO")
	assert.NotContains(t, areaTasks(plan, Area7500), "SETIT", "7500 不在满员区域白名单内")

	keys := areaKeys(plan, Area8600)
	assert.Contains(t, keys, "REP+SETIT|0")
	assert.Contains(t, keys, "SUITES|0")
	assert.Contains(t, areaTasks(plan, Area8600), "SUITE 8827")
	assert.NotContains(t, areaTasks(plan, Area8600), "SUITE 8626")
}

func TestGenerateTasks_SkipsEmptyAndDuplicateAreas(t *testing.T) {
	plan := GenerateTasks([]AreaConfig{
		{ID: Area5000, Cabins: 0},
		{ID: Area5400, Cabins: 20},
		{ID: Area5400, Cabins: 90},
	}, SpecialAreaOptions{})

	require.Len(t, plan.Areas, 3)
	assert.Equal(t, Area5400, plan.Areas[2].AreaID)
	assert.Equal(t, "ROSKAT+IMURI", areaTasks(plan, Area5400)[0])
}

func TestGenerateTasks_KeysUniquePerArea(t *testing.T) {
	areas := DefaultAreaConfigs()
	for i := range areas {
		areas[i].Cabins = 40 + i*17
		areas[i].Full = true
		areas[i].AdditionalWorkers = 75
		for name := range areas[i].Suites {
			areas[i].Suites[name] = true
		}
	}
	plan := GenerateTasks(areas, SpecialAreaOptions{Terrace: true, TerraceWorkers: 2})

	seen := map[string]bool{}
	for _, task := range plan.Tasks() {
		k := task.AreaID + "/" + task.Key.String()
		assert.False(t, seen[k], "任务键重复: %s", k)
		seen[k] = true
	}
}

func TestTaskKey_RoundTrip(t *testing.T) {
	for _, k := range []TaskKey{
		{Section: "PESU", Ordinal: 3},
		{Section: "EXTRAS", Task: "SLIDING DOOR D6/D7", Ordinal: 0},
	} {
		parsed, err := ParseTaskKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseTaskKey("PESU")
	assert.Error(t, err)
	_, err = ParseTaskKey("PESU|x")
	assert.Error(t, err)
}

func TestWorkersNeeded_MatchesGeneratedCount(t *testing.T) {
	cases := [][]AreaConfig{
		nil,
		{{ID: "Z", Cabins: 13}},
		{{ID: Area6500, Cabins: 150}, {ID: Area7600, Cabins: 95, Beds: 100, Suites: map[string]bool{"SUITE 7823": true, "SUITE 7622": true}}},
		{{ID: Area8100, Cabins: 180, Full: true, AdditionalWorkers: 51}, {ID: Area5600, Cabins: 0}},
	}
	opts := SpecialAreaOptions{KonffaImuri: true, Terrace: true, TerraceWorkers: 2}

	for _, areas := range cases {
		assert.Equal(t, GenerateTasks(areas, opts).Count(), WorkersNeeded(areas, opts))
	}

	needs := NeedsByArea([]AreaConfig{{ID: "Z", Cabins: 13}}, SpecialAreaOptions{})
	require.Len(t, needs, 3)
	assert.Equal(t, AreaNeed{AreaID: "Z", Workers: 4}, needs[2])
}

func TestTaskCatalog(t *testing.T) {
	catalog := TaskCatalog()
	assert.Contains(t, catalog, "PESU")
	assert.Contains(t, catalog, "TERRACE")
	assert.Contains(t, catalog, "SUITE 7622")
	assert.Equal(t, "MATTOPESU + REP", catalog[len(catalog)-1])
}
