package request

type CreateSessionRequest struct {
	Domains []string `json:"domains"`
}
