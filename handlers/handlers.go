package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProofAdmin is the slice of a proof source the admin surface needs: read a
// stored stream back and load fixtures in.
type ProofAdmin interface {
	Lookup(item string) ([]string, error)
	Put(item string, nodes []string) error
}

type Handler struct {
	source ProofAdmin
}

func NewHandler(source ProofAdmin) *Handler {
	return &Handler{source: source}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetProof returns the proof stream the authority would serve for an item.
func (h *Handler) GetProof(c *gin.Context) {
	item := c.Param("item")

	nodes, err := h.source.Lookup(item)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no proof for item"})
		return
	}

	c.JSON(http.StatusOK, ProofResponse{Item: item, Nodes: nodes})
}

// PutProof loads or replaces one item's proof fixture.
func (h *Handler) PutProof(c *gin.Context) {
	var req PutProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.source.Put(req.Item, req.Nodes); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ProofResponse{Item: req.Item, Nodes: req.Nodes})
}
