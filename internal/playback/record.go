// Package playback 读取雷达实测轨迹表，用于替代随机生成做确定性回放。
//
// 表格每行一条记录，以 | 分隔：
//
//	index | id | - | - | x | y | z | remainingTime | posture | event | areaId | timestamp
//
// x、y 为设备上报的雷达坐标 H、V。timestamp 可以是 unix 毫秒、RFC3339
// 或 "2006-01-02 15:04:05(.000)"，缺省时按默认间隔回放。
package playback

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"wisefido-radar-sim/internal/models"
)

const (
	// MinInterval 相邻记录的最小回放间隔
	MinInterval = 100 * time.Millisecond
	// DefaultInterval 时间戳缺失、相同或倒序时的回放间隔
	DefaultInterval = time.Second

	minColumns = 11
)

var (
	// ErrEmptyFeed 数据源中没有任何有效记录
	ErrEmptyFeed = errors.New("playback feed has no records")

	timeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05",
	}
)

// Record 一条回放记录
type Record struct {
	Index            int
	ID               int
	X                float64 // 雷达坐标 H
	Y                float64 // 雷达坐标 V
	Z                float64
	RemainingSeconds int
	Posture          models.Posture
	Event            models.PersonEvent
	AreaID           int
	Timestamp        time.Time // 零值表示没有时间戳
}

// RadarPoint 记录在雷达坐标系中的位置
func (r Record) RadarPoint() models.RadarPoint {
	return models.RadarPoint{H: r.X, V: r.Y}
}

// Interval 从 cur 回放到 next 的间隔
func Interval(cur, next Record) time.Duration {
	if cur.Timestamp.IsZero() || next.Timestamp.IsZero() || !next.Timestamp.After(cur.Timestamp) {
		return DefaultInterval
	}
	d := next.Timestamp.Sub(cur.Timestamp)
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// ParseTable 解析 | 分隔的文本表
func ParseTable(r io.Reader) ([]Record, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "|")
		line = strings.TrimSuffix(line, "|")
		rows = append(rows, strings.Split(line, "|"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playback table: %w", err)
	}
	return ParseRows(rows)
}

// ParseRows 解析已拆分为单元格的行，跳过表头与分隔行
func ParseRows(rows [][]string) ([]Record, error) {
	var records []Record
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = strings.TrimSpace(c)
		}
		if skipRow(cells) {
			continue
		}

		rec, err := parseRecord(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFeed
	}
	return records, nil
}

// skipRow 空行、markdown 分隔行以及首列不是数字的表头行
func skipRow(cells []string) bool {
	if len(cells) == 0 || (len(cells) == 1 && cells[0] == "") {
		return true
	}
	if strings.Trim(strings.Join(cells, ""), "-: ") == "" {
		return true
	}
	_, err := strconv.Atoi(cells[0])
	return err != nil
}

func parseRecord(cells []string) (Record, error) {
	if len(cells) < minColumns {
		return Record{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(cells))
	}

	var (
		rec Record
		err error
	)
	p := fieldParser{cells: cells}
	rec.Index = p.parseInt(0, "index")
	rec.ID = p.parseInt(1, "id")
	rec.X = p.parseFloat(4, "x")
	rec.Y = p.parseFloat(5, "y")
	rec.Z = p.parseFloat(6, "z")
	rec.RemainingSeconds = p.parseInt(7, "remainingTime")
	rec.Posture = models.Posture(p.parseInt(8, "posture"))
	rec.Event = models.PersonEvent(p.parseInt(9, "event"))
	rec.AreaID = p.parseInt(10, "areaId")
	if p.err != nil {
		return Record{}, p.err
	}
	if !rec.Posture.Valid() {
		return Record{}, fmt.Errorf("posture %d out of range 0-11", int(rec.Posture))
	}
	if !rec.Event.Valid() {
		return Record{}, fmt.Errorf("event %d out of range 0-4", int(rec.Event))
	}

	if len(cells) > minColumns && cells[minColumns] != "" {
		rec.Timestamp, err = ParseTimestamp(cells[minColumns])
		if err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

// ParseTimestamp 解析 unix 毫秒、RFC3339 或本地日期时间格式
func ParseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// fieldParser 记录第一个解析错误，后续字段不再报错
type fieldParser struct {
	cells []string
	err   error
}

func (p *fieldParser) parseInt(i int, name string) int {
	if p.err != nil {
		return 0
	}
	s := p.cells[i]
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			p.err = fmt.Errorf("invalid %s %q: %w", name, s, err)
			return 0
		}
		v = int(f)
	}
	return v
}

func (p *fieldParser) parseFloat(i int, name string) float64 {
	if p.err != nil {
		return 0
	}
	s := p.cells[i]
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q: %w", name, s, err)
		return 0
	}
	return v
}
