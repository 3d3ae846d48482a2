package models

import "gorm.io/datatypes"

type RasterTask struct {
	ID        int64          `gorm:"primary_key;autoIncrement"`
	TaskID    string         `gorm:"type:varchar(255);index"` //任务标识
	DestTable string         `gorm:"type:varchar(255)"`       //目标数据表名
	Status    int            //任务运行状态 0 运行中 1 执行完成  2 执行失败
	TypeName  string         `gorm:"type:varchar(255)"` //任务类型
	Message   string         `gorm:"type:varchar(255)"` //失败原因
	Args      datatypes.JSON //任务的输入参数
}

func (RasterTask) TableName() string {
	return "raster_task"
}
