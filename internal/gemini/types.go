package gemini

// Wire structures for the generateContent endpoint. Only the fields the
// pipeline uses are mapped.

type request struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generationConfig struct {
	Temperature        float64                `json:"temperature,omitempty"`
	MaxOutputTokens    int                    `json:"maxOutputTokens,omitempty"`
	ResponseMimeType   string                 `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]interface{} `json:"responseJsonSchema,omitempty"`
	ResponseModalities []string               `json:"responseModalities,omitempty"`
}

type response struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
