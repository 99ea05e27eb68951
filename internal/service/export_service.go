package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cabin-roster/backend/internal/repository"
	"cabin-roster/backend/internal/roster"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// 剩余员工工作表名称
const extraSheetName = "EXTRA"

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportRun 导出分配结果为 Excel
	ExportRun(ctx context.Context, runID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRun — 导出分配结果为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 每个区域一个 Sheet（按结果中的区域顺序），区块标题行 + 任务行
//   - 列：任务 | 员工 | 任务键
//   - 最后一个 Sheet "EXTRA"：剩余员工池与 MATTOPESU+REP
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRun(ctx context.Context, runID string) (*bytes.Buffer, string, error) {
	// 1. 查询分配记录
	run, err := loadRun(ctx, s.repo, s.logger, runID)
	if err != nil {
		return nil, "", err
	}

	// 2. 任务展示名索引: "areaID\x00key" → label
	labels := make(map[string]roster.TaskLabel, len(run.Tasks))
	for _, l := range run.Tasks {
		labels[l.AreaID+"\x00"+l.Key] = l
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	sectionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	emptyStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1},
	})

	first := true
	for _, area := range run.Mapping.Areas {
		if area.ID == roster.AreaUnassigned {
			continue
		}
		sheet := sheetName(area.ID)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			s.logger.Error("创建工作表失败", zap.String("sheet", sheet), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if first {
			f.SetActiveSheet(idx)
			first = false
		}

		f.SetColWidth(sheet, "A", "A", 34)
		f.SetColWidth(sheet, "B", "B", 28)
		f.SetColWidth(sheet, "C", "C", 36)

		// 标题行
		f.SetCellValue(sheet, "A1", area.ID)
		f.MergeCell(sheet, "A1", "C1")
		f.SetCellStyle(sheet, "A1", "C1", headerStyle)

		row := 2
		f.SetCellValue(sheet, cell("A", row), "任务")
		f.SetCellValue(sheet, cell("B", row), "员工")
		f.SetCellValue(sheet, cell("C", row), "任务键")
		f.SetCellStyle(sheet, cell("A", row), cell("C", row), sectionStyle)
		row++

		for _, section := range area.Sections {
			f.SetCellValue(sheet, cell("A", row), section)
			f.MergeCell(sheet, cell("A", row), cell("C", row))
			f.SetCellStyle(sheet, cell("A", row), cell("C", row), sectionStyle)
			row++

			for _, key := range area.Keys() {
				if !keyInSection(key, section) {
					continue
				}
				worker, _ := area.Get(key)
				name := section
				if l, ok := labels[area.ID+"\x00"+key]; ok {
					name = l.Name
				} else if tk, err := roster.ParseTaskKey(key); err == nil && tk.Task != "" {
					name = tk.Task
				}

				f.SetCellValue(sheet, cell("A", row), name)
				f.SetCellValue(sheet, cell("B", row), worker)
				f.SetCellValue(sheet, cell("C", row), key)
				if worker == "" {
					f.SetCellStyle(sheet, cell("B", row), cell("B", row), emptyStyle)
				}
				row++
			}
		}
	}

	// 4. 剩余员工
	idx, err := f.NewSheet(extraSheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.String("sheet", extraSheetName), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if first {
		f.SetActiveSheet(idx)
	}
	f.SetColWidth(extraSheetName, "A", "A", 30)
	f.SetColWidth(extraSheetName, "B", "B", 60)
	f.SetCellValue(extraSheetName, "A1", "员工")
	f.SetCellValue(extraSheetName, "B1", "说明")
	f.SetCellStyle(extraSheetName, "A1", "B1", headerStyle)

	row := 2
	for _, le := range run.Leftovers {
		note := "NO PREFERENCES PROVIDED"
		if le.HasPreferences {
			note = "HAS PREFERENCES: [" + strings.Join(le.Preferences, ", ") + "]"
		}
		f.SetCellValue(extraSheetName, cell("A", row), le.Worker)
		f.SetCellValue(extraSheetName, cell("B", row), note)
		row++
	}
	if pool := run.Mapping.Area(roster.AreaUnassigned); pool != nil {
		if rep, ok := pool.Get(roster.MatWashRepKey); ok {
			row++
			f.SetCellValue(extraSheetName, cell("A", row), "MATTOPESU+REP")
			f.SetCellValue(extraSheetName, cell("B", row), rep)
			f.SetCellStyle(extraSheetName, cell("A", row), cell("A", row), sectionStyle)
		}
	}

	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("cabin_assignments_%s.xlsx", run.CreatedAt.Format("2006-01-02_1504"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// 偏好模板
// ═══════════════════════════════════════════════════════════

const templateSheetName = "Worker Preferences Template"

// templateHeaders 模板表头（A-D 列与上传解析的列一一对应）
var templateHeaders = []string{
	"Worker Name",
	"Task Preferences (comma-separated)",
	"Area Preferences for PESU (comma-separated)",
	"Area Preferences for PYYHINTÄ (comma-separated)",
	"Reference",
	"",
}

var templateExamples = [][]string{
	{"Example Worker 1", "PETAUS,PESU,PYYHINTÄ", "8 FRONT,7 FRONT", "8 FRONT"},
	{"Example Worker 2", "MARKET IMURI,KEITTIÖ,TORGET IMURI", "", ""},
	{"Example Worker 3", "PESU,PYYHINTÄ", "8 BACK,DECK 5", "DECK 5"},
}

// buildPreferenceTemplate 生成偏好上传模板：示例行、当前名单、可用任务名与区域代码
func buildPreferenceTemplate(workers []string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := templateSheetName
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, w := range []float64{30, 50, 40, 40, 30, 50} {
		col := colName(i)
		f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
	})
	markerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	row := 1
	for i, h := range templateHeaders {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(templateHeaders)-1), 1), headerStyle)
	row++

	for _, ex := range templateExamples {
		for i, v := range ex {
			f.SetCellValue(sheet, cell(colName(i), row), v)
		}
		row++
	}

	marker := func(title string) {
		row++
		f.SetCellValue(sheet, cell("A", row), "=== "+title+" ===")
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), markerStyle)
		row++
	}

	marker("YOUR WORKERS")
	for _, w := range workers {
		f.SetCellValue(sheet, cell("A", row), w)
		row++
	}

	marker("AVAILABLE TASKS")
	for _, task := range roster.TaskCatalog() {
		f.SetCellValue(sheet, cell("E", row), task)
		row++
	}

	marker("AREA PREFERENCES")
	for _, code := range roster.AreaPreferenceCodes {
		f.SetCellValue(sheet, cell("E", row), code)
		f.SetCellValue(sheet, cell("F", row), "= "+strings.Join(roster.AreaIDsForPreference(code), ", "))
		row++
	}
	row++
	f.SetCellValue(sheet, cell("E", row), "Column C applies to PESU tasks, column D to PYYHINTÄ tasks")
	row++
	f.SetCellValue(sheet, cell("E", row), "Workers with no area preference can be assigned anywhere")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// sheetName 工作表名最长 31 个字符
func sheetName(areaID string) string {
	if len(areaID) > 31 {
		return areaID[:31]
	}
	return areaID
}

func keyInSection(key, section string) bool {
	tk, err := roster.ParseTaskKey(key)
	if err != nil {
		return false
	}
	return tk.Section == section
}
