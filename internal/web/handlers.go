package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdrpinto/pathviz"
)

// maxStepsPerRequest bounds the count query parameter of the step route.
const maxStepsPerRequest = 1000

// CreateRequest starts a run. Omitted fields take the server's defaults.
type CreateRequest struct {
	GridSize      *int     `json:"gridSize"`
	AllowDiagonal *bool    `json:"allowDiagonal"`
	WallChance    *float64 `json:"wallChance"`
	WallGenerator string   `json:"wallGenerator"`
	Strategy      string   `json:"strategy"`
	Seed          *int64   `json:"seed"`
}

func (r CreateRequest) config(base pathviz.Config, maxSize int) (pathviz.Config, error) {
	cfg := base
	if r.GridSize != nil {
		cfg.GridSize = *r.GridSize
	}
	if r.AllowDiagonal != nil {
		cfg.AllowDiagonal = *r.AllowDiagonal
	}
	if r.WallChance != nil {
		cfg.WallChance = *r.WallChance
	}
	if r.WallGenerator != "" {
		kind, err := pathviz.ParseGeneratorKind(r.WallGenerator)
		if err != nil {
			return pathviz.Config{}, err
		}
		cfg.WallGenerator = kind
	}
	if r.Strategy != "" {
		kind, err := pathviz.ParseStrategyKind(r.Strategy)
		if err != nil {
			return pathviz.Config{}, err
		}
		cfg.Strategy = kind
	}
	if r.Seed != nil {
		cfg.Seed = *r.Seed
	}
	if cfg.GridSize > maxSize {
		return pathviz.Config{}, fmt.Errorf("%w: grid size %d exceeds %d", pathviz.ErrInvalidConfig, cfg.GridSize, maxSize)
	}
	return cfg, cfg.Validate()
}

// Status is the progress of a run after a request.
type Status struct {
	Phase       pathviz.Phase `json:"phase"`
	Step        int           `json:"step"`
	GoalReached bool          `json:"goalReached"`
	Exhausted   bool          `json:"exhausted"`
	Done        bool          `json:"done"`
	PathCost    *float64      `json:"pathCost,omitempty"`
}

// CreateResponse carries the id of a new run and its initial paint.
type CreateResponse struct {
	ID       string           `json:"id"`
	Size     int              `json:"size"`
	Seed     int64            `json:"seed"`
	Strategy string           `json:"strategy"`
	Updates  []pathviz.Update `json:"updates"`
	Status   Status           `json:"status"`
}

// StepResponse carries the updates of one or more steps.
type StepResponse struct {
	Updates []pathviz.Update `json:"updates"`
	Status  Status           `json:"status"`
}

// RunResponse describes a run in full. Updates repaint the run from scratch.
type RunResponse struct {
	ID       string               `json:"id"`
	Size     int                  `json:"size"`
	Seed     int64                `json:"seed"`
	Strategy string               `json:"strategy"`
	Walls    []pathviz.Coord      `json:"walls"`
	Updates  []pathviz.Update     `json:"updates"`
	Snapshot pathviz.StepSnapshot `json:"snapshot"`
	Status   Status               `json:"status"`
}

func statusOf(stepper *pathviz.Stepper) Status {
	st := Status{
		Phase:       stepper.Phase(),
		Step:        stepper.Steps(),
		GoalReached: stepper.GoalReached(),
		Exhausted:   stepper.Exhausted(),
		Done:        stepper.Done(),
	}
	if stepper.PathEmitted() {
		cost := stepper.PathCost()
		st.PathCost = &cost
	}
	return st
}

func (s *Server) index(c *gin.Context) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "index.html missing")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) createRun(c *gin.Context) {
	var request CreateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cfg, err := request.config(s.base, s.maxSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options := []pathviz.Option{}
	if s.observer != nil {
		options = append(options, pathviz.WithObserver(s.observer))
	}
	stepper, err := pathviz.NewStepper(cfg, options...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := s.add(stepper)
	s.logger.Info("run created",
		"run", id,
		"strategy", cfg.Strategy.String(),
		"generator", cfg.WallGenerator.String(),
		"size", cfg.GridSize,
		"seed", stepper.Seed())

	c.JSON(http.StatusCreated, CreateResponse{
		ID:       id.String(),
		Size:     stepper.Size(),
		Seed:     stepper.Seed(),
		Strategy: cfg.Strategy.String(),
		Updates:  stepper.InitialUpdates(),
		Status:   statusOf(stepper),
	})
}

func (s *Server) runFromParam(c *gin.Context) (uuid.UUID, *run, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return uuid.Nil, nil, false
	}
	r, ok := s.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return id, nil, false
	}
	return id, r, true
}

func (s *Server) getRun(c *gin.Context) {
	id, r, ok := s.runFromParam(c)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c.JSON(http.StatusOK, RunResponse{
		ID:       id.String(),
		Size:     r.stepper.Size(),
		Seed:     r.stepper.Seed(),
		Strategy: r.stepper.Config().Strategy.String(),
		Walls:    r.stepper.Grid().Walls(),
		Updates:  r.stepper.Repaint(),
		Snapshot: r.stepper.Snapshot(),
		Status:   statusOf(r.stepper),
	})
}

func (s *Server) stepRun(c *gin.Context) {
	id, r, ok := s.runFromParam(c)
	if !ok {
		return
	}
	count := 1
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxStepsPerRequest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and " + strconv.Itoa(maxStepsPerRequest)})
			return
		}
		count = n
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	wasDone := r.stepper.Done()
	updates := []pathviz.Update{}
	for i := 0; i < count && !r.stepper.Done(); i++ {
		batch, err := r.stepper.Step()
		if err != nil {
			s.logger.Error("run aborted", "run", id, "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, pathviz.ErrInconsistentPredecessors) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		updates = append(updates, batch...)
	}
	if !wasDone && r.stepper.Done() {
		s.logger.Info("run finished",
			"run", id,
			"strategy", r.stepper.Config().Strategy.String(),
			"steps", r.stepper.Steps(),
			"found", r.stepper.PathEmitted())
	}
	c.JSON(http.StatusOK, StepResponse{Updates: updates, Status: statusOf(r.stepper)})
}

func (s *Server) deleteRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	if !s.remove(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
