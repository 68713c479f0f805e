package routes

import (
	"io/fs"
	"net/http"
	"time"

	"bidtrack/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Bids *handlers.BidHandler
	// WebFS holds the embedded dashboard; nil disables the UI.
	WebFS fs.FS
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.GET("/bids", d.Bids.List)
	r.POST("/bids", d.Bids.Create)
	r.GET("/bids/check/company", d.Bids.CheckCompany)
	r.GET("/bids/export", d.Bids.Export)
	r.GET("/bids/summary/stats", d.Bids.Stats)
	r.GET("/bids/summary/timeseries/multi", d.Bids.Timeseries)
	r.GET("/bids/:id", d.Bids.Get)
	r.PUT("/bids/:id", d.Bids.Update)
	r.DELETE("/bids/all", d.Bids.DeleteAll)
	r.DELETE("/bids/:id", d.Bids.Delete)

	if d.WebFS != nil {
		r.StaticFS("/ui", http.FS(d.WebFS))
		r.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/ui/")
		})
	}
}
