package pgraster

import "math"

// PixelType PostGIS栅格像元存储类型
type PixelType string

const (
	PT1BB   PixelType = "1BB"
	PT2BUI  PixelType = "2BUI"
	PT4BUI  PixelType = "4BUI"
	PT8BSI  PixelType = "8BSI"
	PT8BUI  PixelType = "8BUI"
	PT16BSI PixelType = "16BSI"
	PT16BUI PixelType = "16BUI"
	PT32BSI PixelType = "32BSI"
	PT32BUI PixelType = "32BUI"
	PT32BF  PixelType = "32BF"
	PT64BF  PixelType = "64BF"
)

var validPixelTypes = map[PixelType]bool{
	PT1BB: true, PT2BUI: true, PT4BUI: true, PT8BSI: true, PT8BUI: true,
	PT16BSI: true, PT16BUI: true, PT32BSI: true, PT32BUI: true,
	PT32BF: true, PT64BF: true,
}

// Valid 是否为合法的像元类型标识
func (p PixelType) Valid() bool {
	return validPixelTypes[p]
}

// DetectPixelType 扫描全部波段像元值自动选择存储类型：
// 整数值用32BSI，其余用64BF保证精度
func DetectPixelType(bands [][][]float64) PixelType {
	for _, band := range bands {
		for _, row := range band {
			for _, v := range row {
				if math.IsNaN(v) {
					continue
				}
				if v != math.Trunc(v) {
					return PT64BF
				}
				if v > math.MaxInt32 || v < math.MinInt32 {
					return PT64BF
				}
			}
		}
	}
	return PT32BSI
}
