package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/model"
	"cabin-roster/backend/internal/repository"
	"cabin-roster/backend/internal/roster"
	pkgerrors "cabin-roster/backend/pkg/errors"
	"cabin-roster/backend/pkg/metrics"
)

// ── 偏好模块业务错误 ──

var (
	ErrPreferenceNotFound   = errors.New("该员工没有偏好记录")
	ErrNoValidPreferences   = errors.New("上传内容中没有有效的员工偏好")
	ErrTemplateGenerateFail = errors.New("生成偏好模板失败")
)

// 上传文件中的标记行前缀（模板中的分组标题）
const templateMarkerPrefix = "==="

// PreferenceService 员工偏好业务接口
type PreferenceService interface {
	Import(ctx context.Context, items []dto.PreferenceItem, operator string) (*dto.ImportResult, error)
	ImportFile(ctx context.Context, r io.Reader, operator string) (*dto.ImportResult, error)
	List(ctx context.Context) ([]dto.PreferenceResponse, error)
	Remove(ctx context.Context, name string) error
	Clear(ctx context.Context) (*dto.ClearPreferencesResponse, error)
	Template(ctx context.Context) (*bytes.Buffer, string, error)
	TestMatch(req *dto.MatchRequest) *dto.MatchResponse
}

type preferenceService struct {
	repo   *repository.Repository
	gate   *sync.Mutex
	logger *zap.Logger
}

// NewPreferenceService 创建 PreferenceService 实例
func NewPreferenceService(repo *repository.Repository, gate *sync.Mutex, logger *zap.Logger) PreferenceService {
	return &preferenceService{repo: repo, gate: gate, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Import — 批量写入偏好
// ═══════════════════════════════════════════════════════════
//
// 同一员工（规范化姓名相同）整体覆盖，不做合并；同一批次内后出现的行生效，
// 位置以首次出现为准。未知区域代码被丢弃并返回警告。

func (s *preferenceService) Import(ctx context.Context, items []dto.PreferenceItem, operator string) (*dto.ImportResult, error) {
	result := &dto.ImportResult{}
	prefs := make([]model.WorkerPreference, 0, len(items))
	index := make(map[string]int, len(items))

	for i, item := range items {
		display := strings.TrimSpace(item.WorkerName)
		key := roster.NormalizeWorkerName(display)
		if key == "" {
			result.Skipped = append(result.Skipped, dto.SkippedRow{Row: i + 1, Reason: "员工姓名为空"})
			continue
		}

		areas, unknown := cleanAreaCodes(item.AreaPreferences)
		wipes, unknownWipe := cleanAreaCodes(item.PyyhintaPreferences)
		for _, code := range append(unknown, unknownWipe...) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: 未知区域代码 %q 已忽略", display, code))
		}

		p := model.WorkerPreference{
			NameKey:             key,
			DisplayName:         display,
			TaskPreferences:     model.StringArray(cleanTasks(item.TaskPreferences)),
			AreaPreferences:     model.StringArray(areas),
			PyyhintaPreferences: model.StringArray(wipes),
		}
		p.CreatedBy = operatorPtr(operator)
		p.UpdatedBy = operatorPtr(operator)

		if pos, ok := index[key]; ok {
			prefs[pos] = p
			continue
		}
		index[key] = len(prefs)
		prefs = append(prefs, p)
	}

	if len(prefs) == 0 {
		return nil, ErrNoValidPreferences
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.repo.Preference.UpsertMany(ctx, prefs); err != nil {
		s.logger.Error("写入员工偏好失败", zap.Error(err))
		return nil, err
	}

	result.Imported = len(prefs)
	metrics.ImportedRows.WithLabelValues("preferences").Add(float64(len(prefs)))
	s.logger.Info("员工偏好已导入",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// ImportFile 解析上传的偏好 Excel 并导入
func (s *preferenceService) ImportFile(ctx context.Context, r io.Reader, operator string) (*dto.ImportResult, error) {
	items, skipped, err := ParsePreferenceFile(r)
	if err != nil {
		return nil, err
	}
	result, err := s.Import(ctx, items, operator)
	if err != nil {
		return nil, err
	}
	result.Skipped = append(skipped, result.Skipped...)
	return result, nil
}

// ParsePreferenceFile 读取偏好工作簿的第一个工作表
//
// 列 A 员工姓名，列 B 逗号分隔的任务，列 C 清洗（PESU）区域代码，列 D 擦拭（PYYHINTÄ）区域代码。
// 表头、"===" 分组行与模板示例行被跳过；姓名为空的行静默忽略。
func ParsePreferenceFile(r io.Reader) ([]dto.PreferenceItem, []dto.SkippedRow, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return nil, nil, err
	}

	var (
		items   []dto.PreferenceItem
		skipped []dto.SkippedRow
	)
	for i, row := range rows {
		name := strings.TrimSpace(cellAt(row, 0))
		switch {
		case name == "":
			continue
		case i == 0 && strings.EqualFold(name, templateHeaders[0]):
			continue
		case strings.HasPrefix(name, templateMarkerPrefix):
			continue
		case strings.HasPrefix(strings.ToUpper(name), "EXAMPLE WORKER"):
			skipped = append(skipped, dto.SkippedRow{Row: i + 1, Reason: "模板示例行"})
			continue
		}

		items = append(items, dto.PreferenceItem{
			WorkerName:          name,
			TaskPreferences:     splitCell(cellAt(row, 1)),
			AreaPreferences:     splitCell(cellAt(row, 2)),
			PyyhintaPreferences: splitCell(cellAt(row, 3)),
		})
	}
	return items, skipped, nil
}

func (s *preferenceService) List(ctx context.Context) ([]dto.PreferenceResponse, error) {
	prefs, err := s.repo.Preference.List(ctx)
	if err != nil {
		s.logger.Error("查询员工偏好失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.PreferenceResponse, 0, len(prefs))
	for i := range prefs {
		list = append(list, toPreferenceResponse(&prefs[i]))
	}
	return list, nil
}

// Remove 按规范化姓名删除单个员工的偏好
func (s *preferenceService) Remove(ctx context.Context, name string) error {
	key := roster.NormalizeWorkerName(name)
	if key == "" {
		return ErrPreferenceNotFound
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.repo.Preference.Delete(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPreferenceNotFound
		}
		s.logger.Error("删除员工偏好失败", zap.String("name", key), zap.Error(err))
		return err
	}
	s.logger.Info("员工偏好已删除", zap.String("name", key))
	return nil
}

func (s *preferenceService) Clear(ctx context.Context) (*dto.ClearPreferencesResponse, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	n, err := s.repo.Preference.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("清空员工偏好失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("员工偏好已清空", zap.Int64("removed", n))
	return &dto.ClearPreferencesResponse{Removed: n}, nil
}

// Template 生成带当前名单的偏好模板
func (s *preferenceService) Template(ctx context.Context) (*bytes.Buffer, string, error) {
	workers, err := s.repo.Roster.List(ctx)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, "", err
	}
	names := make([]string, 0, len(workers))
	for _, w := range workers {
		names = append(names, w.Name)
	}

	buf, err := buildPreferenceTemplate(names)
	if err != nil {
		s.logger.Error("生成偏好模板失败", zap.Error(err))
		return nil, "", ErrTemplateGenerateFail
	}
	return buf, "worker_preferences_template.xlsx", nil
}

func (s *preferenceService) TestMatch(req *dto.MatchRequest) *dto.MatchResponse {
	return &dto.MatchResponse{
		Matches:              roster.TaskMatches(req.Task, req.Preference),
		NormalizedTask:       roster.NormalizeTaskName(req.Task),
		NormalizedPreference: roster.NormalizeTaskName(req.Preference),
		BaseType:             roster.BaseTaskType(req.Task),
	}
}

// ── 辅助函数 ──

func toPreferenceResponse(p *model.WorkerPreference) dto.PreferenceResponse {
	return dto.PreferenceResponse{
		WorkerName:          p.NameKey,
		DisplayName:         p.DisplayName,
		TaskPreferences:     nonNil(p.TaskPreferences),
		AreaPreferences:     nonNil(p.AreaPreferences),
		PyyhintaPreferences: nonNil(p.PyyhintaPreferences),
		Position:            p.Position,
		UpdatedAt:           p.UpdatedAt.Format(time.RFC3339),
	}
}

func nonNil(a model.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

// cleanTasks 去掉空白项，保留原有顺序与写法
func cleanTasks(tasks []string) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// cleanAreaCodes 规范化区域代码并去重，返回有效代码与未知代码
func cleanAreaCodes(codes []string) (valid, unknown []string) {
	valid = make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		code := roster.NormalizeAreaCode(c)
		if code == "" {
			continue
		}
		if !roster.IsAreaPreferenceCode(code) {
			unknown = append(unknown, strings.TrimSpace(c))
			continue
		}
		if !seen[code] {
			seen[code] = true
			valid = append(valid, code)
		}
	}
	return valid, unknown
}

// readFirstSheet 读取工作簿第一个工作表的全部行
func readFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.ErrInvalidWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidWorkbook, err)
	}
	return rows, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// splitCell 按逗号拆分单元格，去掉空白项
func splitCell(v string) []string {
	if strings.TrimSpace(v) == "" {
		return []string{}
	}
	return cleanTasks(strings.Split(v, ","))
}
