package fault

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// FromOpenAI converts an error returned by the go-openai client into
// the taxonomy. API rejections classify by HTTP status, everything
// else is a transport failure.
func FromOpenAI(service string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return FromHTTPStatus(service, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return FromHTTPStatus(service, reqErr.HTTPStatusCode, reqErr.Error())
	}
	return &NetworkError{Service: service, Err: err}
}
