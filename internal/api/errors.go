package api

import (
	"fmt"
	"net/http"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/llm"
)

// errorResponse maps an analysis failure to a status code and a message
// safe to show to users.
func errorResponse(err error, provider string) (int, string) {
	switch analyzer.KindOf(err) {
	case analyzer.KindEmptyInput:
		return http.StatusUnprocessableEntity, "The page has no text content to analyze."
	case analyzer.KindMalformedResponse:
		return http.StatusBadGateway, "The AI provider returned a response that could not be parsed. Please try again."
	case analyzer.KindInvalidConfiguration:
		return http.StatusInternalServerError, "The analyzer is misconfigured."
	}

	switch llm.Classify(err) {
	case llm.KindAuth:
		return http.StatusInternalServerError,
			fmt.Sprintf("The %s API key is missing or invalid. Please check your configuration.", provider)
	case llm.KindQuota:
		return http.StatusTooManyRequests, "API quota exceeded or rate limit reached. Please try again later."
	case llm.KindNetwork:
		return http.StatusServiceUnavailable, "Network connection error. Please check your internet connection."
	}
	return http.StatusInternalServerError, "Analysis failed: " + err.Error()
}
