// internal/rfq/extract/models.go
package extract

import "gendra-backend/internal/rfq"

// FileContext carries metadata about an uploaded document whose text was
// extracted by an external collaborator.
type FileContext struct {
	Filename  string `json:"filename,omitempty"`
	FileType  string `json:"fileType,omitempty"`
	SheetName string `json:"sheetName,omitempty"`
}

// UserContext carries optional hints about the requesting user.
type UserContext struct {
	UserID            string `json:"userId,omitempty"`
	PreferredIndustry string `json:"preferredIndustry,omitempty"`
}

// Input is a normalized extraction request.
type Input struct {
	Text        string       `json:"text"`
	FileContext *FileContext `json:"fileContext,omitempty"`
	UserContext *UserContext `json:"userContext,omitempty"`
}

// Result is the outcome of a cascade run. Record is always populated; when
// every strategy fails it holds the sentinel and Classification is reject.
type Result struct {
	Record         rfq.StructuredRFQ  `json:"record"`
	Classification rfq.Classification `json:"classification"`
	Issues         []rfq.FieldIssue   `json:"issues,omitempty"`
	ModelUsed      string             `json:"modelUsed"`
}

// chat-completions wire types

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string         `json:"model"`
	Messages            []chatMessage  `json:"messages"`
	Temperature         float64        `json:"temperature"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
	TopP                float64        `json:"top_p"`
	ResponseFormat      responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Code             string `json:"code"`
		Message          string `json:"message"`
		FailedGeneration string `json:"failed_generation"`
	} `json:"error"`
}
