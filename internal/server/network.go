package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/rhymenet/internal/core"
	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/core/sorting"
)

type NetworkRequest struct {
	Seed       string           `json:"seed" binding:"required"`
	MaxDepth   int              `json:"max_depth" binding:"min=0"`
	EdgeFilter model.EdgeFilter `json:"edge_filter"`
	Filters    model.FilterSet  `json:"filters"`
	Sort       model.SortOrder  `json:"sort"`
}

type NetworkResponse struct {
	SearchID string                 `json:"search_id"`
	Status   string                 `json:"status"`
	Network  *model.NetworkResult   `json:"network"`
	Records  []model.SortableRecord `json:"records"`
	Families []model.Family         `json:"families"`
}

// Network runs an expansion. A search overtaken by a newer one from the
// same session gets 409 and its result is dropped.
func (s *Server) Network(c *gin.Context) {
	var req NetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess := s.session(c)
	token := sess.Begin()

	result, err := s.expand(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !sess.Commit(token, result) {
		c.JSON(http.StatusConflict, gin.H{"error": "search superseded by a newer one"})
		return
	}

	view := s.RhymeNet.View(result, req.Filters, req.Sort)
	c.JSON(http.StatusOK, NetworkResponse{
		SearchID: uuid.NewString(),
		Status:   core.Status(result),
		Network:  result,
		Records:  view.Records,
		Families: view.Families,
	})
}

// expand coalesces identical concurrent searches into one store walk.
func (s *Server) expand(ctx context.Context, req NetworkRequest) (*model.NetworkResult, error) {
	key, err := json.Marshal(struct {
		Seed   string           `json:"seed"`
		Depth  int              `json:"depth"`
		Filter model.EdgeFilter `json:"filter"`
	}{model.Normalize(req.Seed), req.MaxDepth, req.EdgeFilter})
	if err != nil {
		return nil, err
	}

	// shared by every waiter, so one caller hanging up must not cancel it
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.flight.Do(string(key), func() (interface{}, error) {
		return s.RhymeNet.Search(shared, req.Seed, req.MaxDepth, req.EdgeFilter)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.NetworkResult), nil
}

type RecordsRequest struct {
	Network *model.NetworkResult `json:"network"`
	Filters model.FilterSet      `json:"filters"`
	Sort    model.SortOrder      `json:"sort"`
}

var errNoNetwork = errors.New("no network given and none searched in this session")

// Records re-derives records from a network without touching the store.
// Without a network in the body the session's last search is used.
func (s *Server) Records(c *gin.Context) {
	var req RecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result := req.Network
	if result == nil {
		if sess, ok := s.lookup(c); ok {
			result = sess.Current()
		}
	}
	if result == nil {
		badRequest(c, errNoNetwork)
		return
	}

	view := s.RhymeNet.View(result, req.Filters, req.Sort)
	c.JSON(http.StatusOK, gin.H{
		"records":  view.Records,
		"families": view.Families,
		"active":   req.Filters.Active(),
	})
}

type SortRequest struct {
	Order model.SortOrder `json:"order"`
	Op    string          `json:"op" binding:"required,oneof=add remove toggle move"`
	Field model.SortField `json:"field"`
	ID    string          `json:"id"`
	From  int             `json:"from"`
	To    int             `json:"to"`
}

var errNoField = errors.New("add needs a field")

func (s *Server) Sort(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var order model.SortOrder
	switch req.Op {
	case "add":
		if req.Field == "" {
			badRequest(c, errNoField)
			return
		}
		order = sorting.Add(req.Order, req.Field)
	case "remove":
		order = sorting.Remove(req.Order, req.ID)
	case "toggle":
		order = sorting.Toggle(req.Order, req.ID)
	case "move":
		order = sorting.Move(req.Order, req.From, req.To)
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
