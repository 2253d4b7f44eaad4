package documenttype

type DocumentType struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Detail   string `json:"detail"`
	IsActive bool   `json:"isActive"`
	Order    int    `json:"order"`
}
