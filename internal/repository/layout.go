package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"wisefido-radar-sim/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrLayoutNotFound unit 不存在或没有布局
	ErrLayoutNotFound = errors.New("room layout not found")
)

// LayoutRepository 从 units.layout_config 读取房间布局
type LayoutRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLayoutRepository 创建布局仓库
func NewLayoutRepository(db *sql.DB, logger *zap.Logger) *LayoutRepository {
	return &LayoutRepository{
		db:     db,
		logger: logger,
	}
}

// GetUnitLayout 读取 unit 的房间布局
func (r *LayoutRepository) GetUnitLayout(ctx context.Context, tenantID, unitID string) (models.RoomLayout, error) {
	if tenantID == "" || unitID == "" {
		return models.RoomLayout{}, fmt.Errorf("tenant_id and unit_id are required")
	}

	query := `
		SELECT
			CASE WHEN u.layout_config IS NULL THEN NULL ELSE u.layout_config::text END as layout_config
		FROM units u
		WHERE u.tenant_id = $1 AND u.unit_id = $2
	`

	var layoutConfig sql.NullString
	err := r.db.QueryRowContext(ctx, query, tenantID, unitID).Scan(&layoutConfig)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoomLayout{}, fmt.Errorf("unit %s: %w", unitID, ErrLayoutNotFound)
		}
		return models.RoomLayout{}, fmt.Errorf("failed to query unit layout: %w", err)
	}
	if !layoutConfig.Valid || layoutConfig.String == "" {
		return models.RoomLayout{}, fmt.Errorf("unit %s: %w", unitID, ErrLayoutNotFound)
	}

	layout, err := ParseLayout([]byte(layoutConfig.String))
	if err != nil {
		return models.RoomLayout{}, fmt.Errorf("unit %s: %w", unitID, err)
	}

	r.logger.Info("Loaded room layout from database",
		zap.String("tenant_id", tenantID),
		zap.String("unit_id", unitID),
		zap.Int("objects", len(layout.Objects)),
	)
	return layout, nil
}

// LoadLayoutFile 从 JSON 文件读取房间布局
func LoadLayoutFile(path string) (models.RoomLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RoomLayout{}, fmt.Errorf("failed to read layout file: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout 解析布局 JSON，兼容 {"objects": [...]} 与裸数组两种形式
func ParseLayout(data []byte) (models.RoomLayout, error) {
	var layout models.RoomLayout
	if err := json.Unmarshal(data, &layout); err == nil && len(layout.Objects) > 0 {
		return layout, nil
	}

	var objects []models.RoomObject
	if err := json.Unmarshal(data, &objects); err != nil {
		return models.RoomLayout{}, fmt.Errorf("failed to parse layout: %w", err)
	}
	if len(objects) == 0 {
		return models.RoomLayout{}, ErrLayoutNotFound
	}
	return models.RoomLayout{Objects: objects}, nil
}
