package vk

// photosGetResponse is the envelope of a photos.get call. Exactly one of
// Response or Error is set.
type photosGetResponse struct {
	Response *photosPage `json:"response"`
	Error    *apiError   `json:"error"`
}

type photosPage struct {
	Count int         `json:"count"`
	Items []photoItem `json:"items"`
}

type photoItem struct {
	ID      int64       `json:"id"`
	OwnerID int64       `json:"owner_id"`
	Date    int64       `json:"date"`
	Sizes   []PhotoSize `json:"sizes"`
	Likes   likes       `json:"likes"`
}

// PhotoSize is one rendition of a photo
type PhotoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type likes struct {
	Count int `json:"count"`
}

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}
