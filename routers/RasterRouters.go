package routers

import (
	"github.com/GrainArc/RasterMap/views"
	"github.com/gin-gonic/gin"
)

func RasterRouters(r *gin.Engine) {
	RasterController := &views.RasterController{}
	rastRouter := r.Group("/raster")
	{
		rastRouter.POST("/WriteRast", RasterController.WriteRast)
		rastRouter.GET("/GetTaskStatus", RasterController.GetTaskStatus)
	}
	geoRouter := r.Group("/geo")
	{
		geoRouter.POST("/FormatGeomInsert", RasterController.FormatGeomInsert)
		geoRouter.POST("/ShpToInsert", RasterController.ShpToInsert)
	}
}
