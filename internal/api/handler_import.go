package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-portal-backend/internal/importer"
)

// importBody returns the CSV payload: either a multipart "file" field or the
// raw request body.
func importBody(c *gin.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		return fh.Open()
	}
	return c.Request.Body, nil
}

// ImportRooms handles POST /api/rooms/import.
func (h *Handler) ImportRooms(c *gin.Context) {
	body, err := importBody(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	result, err := importer.Rooms(h.store.DB(), body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.invalidateCache()
	c.JSON(http.StatusOK, result)
}

// ImportTimetable handles POST /api/timetable/import.
func (h *Handler) ImportTimetable(c *gin.Context) {
	body, err := importBody(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	result, err := importer.Timetable(h.store.DB(), body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
