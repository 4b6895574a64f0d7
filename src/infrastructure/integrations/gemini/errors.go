package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const statusAlreadyExists = "ALREADY_EXISTS"

// IsAlreadyExists reports whether err is a conflict on a resource that is
// already present, such as a file uploaded twice under the same name.
//
// Files.Upload formats the error of its session request into a plain
// error, so the rendered genai.APIError text is checked when no structured
// error is in the chain.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return isAlreadyExists(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return isAlreadyExists(*apiErrPtr)
	}

	msg := err.Error()
	return strings.Contains(msg, "Status: "+statusAlreadyExists) ||
		strings.Contains(msg, fmt.Sprintf("Error %d,", http.StatusConflict))
}

func isAlreadyExists(e genai.APIError) bool {
	return e.Code == http.StatusConflict || e.Status == statusAlreadyExists
}
