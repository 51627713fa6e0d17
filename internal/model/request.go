package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type ExternalLoginRequest struct {
	IDToken string `json:"id_token"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type RiskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Probability int    `json:"probability"`
	Impact      int    `json:"impact"`
	Status      string `json:"status"`
}
