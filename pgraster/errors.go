package pgraster

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedInput 输入的栅格数据无法归一化为规则格网
	ErrUnsupportedInput = errors.New("pgraster: 不支持的栅格输入类型")
	// ErrExtensionMissing 目标库缺少postgis_raster扩展
	ErrExtensionMissing = errors.New("pgraster: 目标数据库缺少raster扩展支持")
	// ErrDestinationExists 目标表已存在且未指定overwrite/append
	ErrDestinationExists = errors.New("pgraster: 目标表已存在")
	// ErrInvalidBlockSpec 分块参数非法
	ErrInvalidBlockSpec = errors.New("pgraster: 无效的分块参数")
)

// UploadError 上传中断错误，携带失败瓦块的坐标
type UploadError struct {
	Band     int
	RowBlock int
	ColBlock int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("pgraster: 瓦块上传失败 (band=%d, row_block=%d, col_block=%d): %v",
		e.Band, e.RowBlock, e.ColBlock, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
