// Package api exposes the technology evaluator over HTTP for external
// tools. The surface mirrors the library contract: per-technology cost,
// conversion and state-machine step endpoints. Feasibility violations map to
// 422 so callers can distinguish infeasible candidates from bad requests.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/tecsim/tecsim/tec"
)

// Server holds the loaded technology models, keyed by record name. Models
// are read-only after loading, so handlers share them freely.
type Server struct {
	models map[string]*tec.TechnologyModel
}

// NewServer returns an empty server.
func NewServer() *Server {
	return &Server{models: make(map[string]*tec.TechnologyModel)}
}

// Add registers a technology model under its record name.
func (s *Server) Add(model *tec.TechnologyModel) {
	s.models[model.Record.Name] = model
}

// LoadDir loads every .yaml technology record in dir.
func (s *Server) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		model, err := tec.LoadTechnologyModel(path)
		if err != nil {
			return err
		}
		logrus.Infof("loaded technology %s from %s", model.Record.Name, path)
		s.Add(model)
	}
	return nil
}

// Names returns the registered technology names, sorted.
func (s *Server) Names() []string {
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler builds the HTTP handler: a gin router wrapped in permissive CORS.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/technologies", s.listTechnologies)
	router.POST("/technologies/:name/cost", s.evaluateCost)
	router.POST("/technologies/:name/convert", s.evaluateConversion)
	router.POST("/technologies/:name/step", s.stepState)

	return cors.Default().Handler(router)
}

// ListenAndServe serves the API on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	logrus.Infof("serving technology evaluator API on %s (%d technologies)", addr, len(s.models))
	return http.ListenAndServe(addr, s.Handler())
}
