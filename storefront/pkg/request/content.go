package request

type SavePage struct {
	Title string `validate:"required" json:"title"`
	Body  string `validate:"required" json:"body"`
}
