package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrDeviceNotFound 设备不存在
var ErrDeviceNotFound = errors.New("device not found")

// Device 模拟雷达绑定的设备记录
type Device struct {
	DeviceID     string
	TenantID     string
	SerialNumber sql.NullString
	UID          sql.NullString
	DeviceName   string
	BoundRoomID  sql.NullString
	UnitID       sql.NullString
}

// DeviceRepository 设备仓库
type DeviceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeviceRepository 创建设备仓库
func NewDeviceRepository(db *sql.DB, logger *zap.Logger) *DeviceRepository {
	return &DeviceRepository{
		db:     db,
		logger: logger,
	}
}

// GetDeviceBySerialNumber 根据序列号获取设备
func (r *DeviceRepository) GetDeviceBySerialNumber(ctx context.Context, serialNumber string) (*Device, error) {
	query := `
		SELECT
			d.device_id,
			d.tenant_id,
			d.serial_number,
			d.uid,
			d.device_name,
			d.bound_room_id,
			d.unit_id
		FROM devices d
		WHERE d.serial_number = $1
		LIMIT 1
	`

	device := &Device{}
	err := r.db.QueryRowContext(ctx, query, serialNumber).Scan(
		&device.DeviceID,
		&device.TenantID,
		&device.SerialNumber,
		&device.UID,
		&device.DeviceName,
		&device.BoundRoomID,
		&device.UnitID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, serialNumber)
		}
		return nil, fmt.Errorf("failed to query device: %w", err)
	}

	return device, nil
}
