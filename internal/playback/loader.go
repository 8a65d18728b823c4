package playback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Loader 从本地文件、xlsx 工作簿或 http(s) 地址加载回放数据
type Loader struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewLoader 创建回放数据加载器
func NewLoader(logger *zap.Logger) *Loader {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	return &Loader{
		httpClient: client,
		logger:     logger,
	}
}

// Load 加载回放记录
func (l *Loader) Load(ctx context.Context, source string) ([]Record, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptyFeed
	}

	var (
		records []Record
		err     error
	)
	switch {
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		records, err = l.loadHTTP(ctx, source)
	case isWorkbook(source):
		records, err = l.loadWorkbookFile(source)
	default:
		records, err = l.loadTextFile(source)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("Playback feed loaded",
		zap.String("source", source),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (l *Loader) loadTextFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playback file: %w", err)
	}
	defer f.Close()

	return ParseTable(f)
}

func (l *Loader) loadWorkbookFile(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playback workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

func (l *Loader) loadHTTP(ctx context.Context, url string) ([]Record, error) {
	resp, err := l.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playback feed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch playback feed: status %d", resp.StatusCode())
	}

	body := resp.Body()
	if isWorkbook(url) || strings.Contains(resp.Header().Get("Content-Type"), "spreadsheetml") {
		return parseWorkbookReader(bytes.NewReader(body))
	}
	return ParseTable(bytes.NewReader(body))
}

func parseWorkbookReader(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open playback workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

// parseWorkbook 读取第一个工作表，列顺序与文本表相同
func parseWorkbook(f *excelize.File) ([]Record, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFeed
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return ParseRows(rows)
}

func isWorkbook(source string) bool {
	path := source
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
