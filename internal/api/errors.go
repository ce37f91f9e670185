package api

import "fmt"

// ValidationError describes one rejected query parameter. It renders like a
// FastAPI/pydantic error entry so existing clients keep working.
type ValidationError struct {
	Field string `json:"-"`
	Type  string `json:"type"`
	Msg   string `json:"msg"`
	Input string `json:"input"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query parameter %s: %s", e.Field, e.Msg)
}

// errorDetail is one entry of a 422 response body.
type errorDetail struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input string   `json:"input"`
}

func detailsOf(errs []*ValidationError) []errorDetail {
	out := make([]errorDetail, 0, len(errs))
	for _, e := range errs {
		out = append(out, errorDetail{
			Type:  e.Type,
			Loc:   []string{"query", e.Field},
			Msg:   e.Msg,
			Input: e.Input,
		})
	}
	return out
}
