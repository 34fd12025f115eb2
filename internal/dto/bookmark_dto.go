package dto

type CreateBookmarkRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Note  string `json:"note"`
}
