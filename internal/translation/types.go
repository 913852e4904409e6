package translation

// Request is the JSON body posted to the translation endpoint.
type Request struct {
	Text string `json:"texto"`
}

// Response is the JSON reply of the translation endpoint. It carries either
// Error or the translation fields; AudioURL is optional.
type Response struct {
	Error         string `json:"error,omitempty"`
	Hiragana      string `json:"hiragana,omitempty"`
	Romanji       string `json:"romanji,omitempty"`
	Translation   string `json:"traduccion,omitempty"`
	Pronunciation string `json:"pronunciacion,omitempty"`
	AudioURL      string `json:"audio_url,omitempty"`
}

// Failed reports whether the endpoint answered with an application error.
func (r *Response) Failed() bool {
	return r.Error != ""
}

// HasAudio reports whether a clip URL accompanies the translation.
func (r *Response) HasAudio() bool {
	return r.AudioURL != ""
}

// Empty reports whether none of the translation fields are set.
func (r *Response) Empty() bool {
	return r.Hiragana == "" && r.Romanji == "" && r.Translation == "" && r.Pronunciation == ""
}
