package request

type SpinRequest struct {
	Balas int `json:"balas"`
}
