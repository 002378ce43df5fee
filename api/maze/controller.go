package mazeapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/arcade-cabinet/beppo-laughs/maze"
	"github.com/arcade-cabinet/beppo-laughs/service"
	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/gin-gonic/gin"
)

// Controller handles maze routes.
type Controller struct {
	mazes         i.MazeService
	logger        i.Logger
	defaultWidth  int
	defaultHeight int
}

// NewController creates a maze controller serving sizes of width x height
// unless a request asks otherwise.
func NewController(mazes i.MazeService, logger i.Logger, width, height int) *Controller {
	return &Controller{
		mazes:         mazes,
		logger:        logger,
		defaultWidth:  width,
		defaultHeight: height,
	}
}

// RegisterPublic registers public routes.
func (mc *Controller) RegisterPublic(route *gin.RouterGroup) {
	mazes := route.Group("/mazes")
	{
		mazes.GET("/:seed", mc.level)
		mazes.GET("/:seed/ascii", mc.ascii)
	}
}

// RegisterProtected registers protected routes.
func (mc *Controller) RegisterProtected(route *gin.RouterGroup) {}

func (mc *Controller) size(ctx *gin.Context) (int, int, bool) {
	var query LevelQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, 0, false
	}
	if query.Width == 0 {
		query.Width = mc.defaultWidth
	}
	if query.Height == 0 {
		query.Height = mc.defaultHeight
	}
	return query.Width, query.Height, true
}

func (mc *Controller) level(ctx *gin.Context) {
	w, h, ok := mc.size(ctx)
	if !ok {
		return
	}
	level, err := mc.mazes.Level(ctx, ctx.Param("seed"), w, h)
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, level)
}

func (mc *Controller) ascii(ctx *gin.Context) {
	w, h, ok := mc.size(ctx)
	if !ok {
		return
	}
	layout, err := mc.mazes.Layout(ctx, ctx.Param("seed"), w, h)
	if err != nil {
		mc.fail(ctx, err)
		return
	}
	ctx.String(http.StatusOK, layout.String())
}

func (mc *Controller) fail(ctx *gin.Context, err error) {
	if errors.Is(err, maze.ErrInvalidDimensions) || errors.Is(err, service.ErrEmptySeed) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mc.logger.Error(fmt.Sprintf("maze request %s: %v", ctx.Request.URL.Path, err))
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
}
