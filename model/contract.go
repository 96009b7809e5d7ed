package model

// ContractRequest is the body of POST /contract. The url field must be a
// well-formed absolute URL; scheme and host are checked again by the fetcher.
type ContractRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ContractResponse pairs the generated contract text with the input URL.
type ContractResponse struct {
	Contract string `json:"contract"`
	URL      string `json:"url"`
}
