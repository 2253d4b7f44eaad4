package role

type PagePermission struct {
	PageID   string `json:"pageId"`
	PageName string `json:"pageName,omitempty"`
	Me       bool   `json:"me"`
	View     bool   `json:"view"`
	Update   bool   `json:"update"`
	Insert   bool   `json:"insert"`
	Delete   bool   `json:"delete"`
}

type Role struct {
	ID       string           `json:"id,omitempty"`
	Name     string           `json:"name"`
	Detail   string           `json:"detail"`
	PageList []PagePermission `json:"pageList"`
}
