package handler

// CreateIdeaRequest the creation form: all three fields required, goal in
// whole ETH as typed by the user.
type CreateIdeaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Goal        string `json:"goal"`
}

// FundIdeaRequest the funding form amount, in whole ETH.
type FundIdeaRequest struct {
	Amount string `json:"amount"`
}

// IdeaListResponse the list view plus its loading and error banner state.
type IdeaListResponse struct {
	Ideas     interface{} `json:"ideas"`
	Loading   bool        `json:"loading"`
	Error     string      `json:"error,omitempty"`
	Account   string      `json:"account,omitempty"`
	Connected bool        `json:"connected"`
	Pending   interface{} `json:"pending,omitempty"`
}
