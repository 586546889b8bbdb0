package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tecsim/tecsim/tec"
)

// Size carries no binding tag: gin's "required" rejects the zero value, and
// size 0 is legitimate whenever a record's size_min is 0. Bounds are the
// evaluator's job.
type costRequest struct {
	Size      float64 `json:"size"`
	OutputMWh float64 `json:"output_mwh"`
}

type costResponse struct {
	Technology     string  `json:"technology"`
	Size           float64 `json:"size"`
	AnnualizedCost float64 `json:"annualized_cost_eur"`
	Decommission   float64 `json:"decommission_cost_eur"`
}

type convertRequest struct {
	Load  float64             `json:"load"`
	Size  float64             `json:"size"`
	State *tec.OperatingState `json:"state,omitempty"`
}

type convertResponse struct {
	Technology string             `json:"technology"`
	Input      map[string]float64 `json:"input_mw"`
	Output     map[string]float64 `json:"output_mw"`
}

type stepRequest struct {
	State  tec.OperatingState `json:"state"`
	Load   float64            `json:"load"`
	Status string             `json:"status" binding:"required"`
}

type stepResponse struct {
	State     tec.OperatingState `json:"state"`
	Feasible  bool               `json:"feasible"`
	Violation string             `json:"violation,omitempty"`
}

func (s *Server) technology(c *gin.Context) (*tec.TechnologyModel, bool) {
	model, ok := s.models[c.Param("name")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown technology"})
		return nil, false
	}
	return model, true
}

func (s *Server) listTechnologies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"technologies": s.Names()})
}

func (s *Server) evaluateCost(c *gin.Context) {
	model, ok := s.technology(c)
	if !ok {
		return
	}
	var req costRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cost, err := model.AnnualizedCost(req.Size, req.OutputMWh)
	if err != nil {
		c.JSON(violationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, costResponse{
		Technology:     model.Record.Name,
		Size:           req.Size,
		AnnualizedCost: cost,
		Decommission:   model.DecommissionCost(),
	})
}

func (s *Server) evaluateConversion(c *gin.Context) {
	model, ok := s.technology(c)
	if !ok {
		return
	}
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conv, err := model.Convert(req.Load, req.Size, req.State)
	if err != nil {
		c.JSON(violationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, convertResponse{
		Technology: model.Record.Name,
		Input:      conv.Input.Map(),
		Output:     conv.Output.Map(),
	})
}

func (s *Server) stepState(c *gin.Context) {
	model, ok := s.technology(c)
	if !ok {
		return
	}
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := tec.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.State.Status == "" {
		req.State = tec.NewOperatingState()
	}
	next, err := model.Step(req.State, req.Load, status)
	res := stepResponse{State: next, Feasible: err == nil}
	if err != nil {
		res.Violation = err.Error()
	}
	c.JSON(http.StatusOK, res)
}

// violationStatus distinguishes infeasible candidates (422) from malformed
// requests (400).
func violationStatus(err error) int {
	switch {
	case errors.Is(err, tec.ErrSizeOutOfBounds),
		errors.Is(err, tec.ErrBelowMinPartLoad),
		errors.Is(err, tec.ErrMinUptimeViolation),
		errors.Is(err, tec.ErrMinDowntimeViolation),
		errors.Is(err, tec.ErrMaxStartupsExceeded),
		errors.Is(err, tec.ErrRampRateExceeded):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
