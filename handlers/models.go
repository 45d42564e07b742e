package handlers

type ProofResponse struct {
	Item  string   `json:"item"`
	Nodes []string `json:"nodes"`
}

type PutProofRequest struct {
	Item  string   `json:"item" binding:"required"`
	Nodes []string `json:"nodes" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
