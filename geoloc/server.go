// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jcodagnone/fotogeo/spatial"
)

// maxUploadBytes caps a single uploaded photo.
const maxUploadBytes = 20 << 20 // 20 MiB

// Server is the thin HTTP surface over the resolve service. All logic
// lives in the Service; handlers only marshal.
type Server struct {
	service *Service
	repo    LocationRepository
}

// NewServer creates an HTTP server. repo may be nil; history endpoints
// then answer 404.
func NewServer(service *Service, repo LocationRepository) *Server {
	return &Server{service: service, repo: repo}
}

// Register wires the API routes on the given engine.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/healthz", s.health)
	r.POST("/api/resolve", s.resolve)
	r.GET("/api/locations", s.listLocations)
	r.GET("/api/locations/nearby", s.nearbyImages)
}

// Run starts the server on the given address.
func (s *Server) Run(addr string) error {
	r := gin.Default()
	r.MaxMultipartMemory = maxUploadBytes
	s.Register(r)

	return r.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) resolve(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing photo upload"})

		return
	}

	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo too large"})

		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable photo upload"})

		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable photo upload"})

		return
	}

	hint := c.PostForm("hint")

	result, err := s.service.Resolve(c.Request.Context(), data, hint)
	if err != nil {
		// ErrInvalidImage is the only service error.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

		return
	}

	if result.Location == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "not_found",
			"suggestion": result.Suggestion,
			"failures":   result.Failures,
		})

		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) listLocations(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "persistence disabled"})

		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := s.repo.ListResolved(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	count, err := s.repo.CountResolved()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"total": count, "locations": records})
}

func (s *Server) nearbyImages(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "persistence disabled"})

		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)

	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})

		return
	}

	if err := ValidateCoordinates(lat, lng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	images, err := s.repo.NearbyGeoImages(spatial.Point{Lat: lat, Lng: lng})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"images": images})
}
