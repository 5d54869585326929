package bilingual

// apiResponse is the subset of the translation API response used here.
type apiResponse struct {
	ErrorCode   string    `json:"errorCode"`
	Query       string    `json:"query"`
	Translation []string  `json:"translation"`
	Basic       *apiBasic `json:"basic"`
}

// apiBasic holds dictionary data; it is absent for phrases the API only translates.
type apiBasic struct {
	Phonetic   string   `json:"phonetic"`
	USPhonetic string   `json:"us-phonetic"`
	UKPhonetic string   `json:"uk-phonetic"`
	Explains   []string `json:"explains"`
}
