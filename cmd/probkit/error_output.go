package main

import (
	"encoding/json"
	"fmt"
	"strings"

	coreerrors "github.com/davidahmann/probkit/core/errors"
)

type errorOutput struct {
	OK            bool   `json:"ok"`
	Error         string `json:"error"`
	ErrorCode     string `json:"error_code,omitempty"`
	ErrorCategory string `json:"error_category,omitempty"`
	Retryable     bool   `json:"retryable"`
	Hint          string `json:"hint,omitempty"`
}

// fail reports err on the selected output and returns its exit code.
func (a *app) fail(err error) int {
	exitCode := a.exitCodeForError(err)
	output := errorOutput{
		OK:            false,
		Error:         err.Error(),
		ErrorCode:     coreerrors.CodeOf(err),
		ErrorCategory: string(coreerrors.CategoryOf(err)),
		Retryable:     coreerrors.RetryableOf(err),
		Hint:          coreerrors.HintOf(err),
	}
	if a.jsonOutput {
		return a.writeJSONOutput(output, exitCode)
	}
	fmt.Fprintf(a.stderr, "probkit: %s\n", output.Error)
	hint := output.Hint
	if hint == "" {
		hint = defaultHint(exitCode)
	}
	fmt.Fprintf(a.stderr, "hint: %s\n", hint)
	return exitCode
}

func (a *app) writeJSONOutput(output any, exitCode int) int {
	encoded, err := marshalOutputWithErrorEnvelope(output, exitCode)
	if err != nil {
		fmt.Fprintln(a.stdout, `{"ok":false,"error":"failed to encode output","error_code":"encode_failed","error_category":"internal_failure","retryable":false}`)
		return exitInternalFailure
	}
	fmt.Fprintln(a.stdout, string(encoded))
	return exitCode
}

// marshalOutputWithErrorEnvelope fills error_code, error_category, retryable
// and hint from the exit code when an output carries an error without them.
func marshalOutputWithErrorEnvelope(output any, exitCode int) ([]byte, error) {
	encoded, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	result := map[string]any{}
	if err := json.Unmarshal(encoded, &result); err != nil {
		return nil, err
	}
	errorText := strings.TrimSpace(asString(result["error"]))
	if errorText == "" {
		return json.Marshal(result)
	}
	if strings.TrimSpace(asString(result["error_code"])) == "" {
		result["error_code"] = defaultErrorCode(exitCode)
	}
	if strings.TrimSpace(asString(result["error_category"])) == "" {
		result["error_category"] = string(defaultErrorCategory(exitCode))
	}
	if _, exists := result["retryable"]; !exists {
		result["retryable"] = coreerrors.Category(asString(result["error_category"])) == coreerrors.CategoryStateContention
	}
	if strings.TrimSpace(asString(result["hint"])) == "" {
		result["hint"] = defaultHint(exitCode)
	}
	return json.Marshal(result)
}

func (a *app) exitCodeForError(err error) int {
	if err == nil {
		return exitOK
	}
	switch coreerrors.CategoryOf(err) {
	case coreerrors.CategoryInvalidInput:
		return exitInvalidInput
	case coreerrors.CategoryNotFound:
		return exitNotFound
	case coreerrors.CategoryConflict:
		return exitConflict
	case coreerrors.CategoryIntegrity:
		return exitIntegrity
	case coreerrors.CategoryIOFailure, coreerrors.CategoryStateContention, coreerrors.CategoryInternalFailure:
		return exitInternalFailure
	}
	// cobra rejects unknown commands before any command runs
	if !a.started {
		return exitInvalidInput
	}
	return exitInternalFailure
}

func defaultErrorCategory(exitCode int) coreerrors.Category {
	switch exitCode {
	case exitInvalidInput:
		return coreerrors.CategoryInvalidInput
	case exitNotFound:
		return coreerrors.CategoryNotFound
	case exitConflict:
		return coreerrors.CategoryConflict
	case exitIntegrity:
		return coreerrors.CategoryIntegrity
	default:
		return coreerrors.CategoryInternalFailure
	}
}

func defaultErrorCode(exitCode int) string {
	switch exitCode {
	case exitInvalidInput:
		return "invalid_input"
	case exitNotFound:
		return "not_found"
	case exitConflict:
		return "conflict"
	case exitIntegrity:
		return "integrity_failure"
	default:
		return "internal_failure"
	}
}

func defaultHint(exitCode int) string {
	switch exitCode {
	case exitInvalidInput:
		return "check command usage with probkit help"
	case exitNotFound:
		return "run probkit info to list registered artifacts"
	case exitConflict:
		return "choose another name or remove the existing artifact first"
	case exitIntegrity:
		return "run probkit doctor and repair the reported checks"
	default:
		return "retry after checking local environment and logs"
	}
}

func asString(value any) string {
	text, _ := value.(string)
	return text
}
