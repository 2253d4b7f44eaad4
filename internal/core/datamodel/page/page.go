package page

type Page struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Detail  string `json:"detail"`
	IsCache bool   `json:"isCache"`
}
