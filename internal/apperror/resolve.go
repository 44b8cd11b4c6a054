package apperror

import "errors"

// Response is the standardized error body returned to clients.
type Response struct {
	Success        bool           `json:"success"`
	Error          Code           `json:"error"`
	Message        string         `json:"message"`
	Detail         string         `json:"detail,omitempty"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
	Status         int            `json:"-"`
}

// Resolve converts any error into a {code, message, status} response.
// Business errors keep their code; their vendor cause, when recognized,
// only contributes the detail line. Raw vendor errors are translated through
// the vendor tables and anything else becomes UNKNOWN_ERROR.
func Resolve(err error) Response {
	var appErr *Error
	if errors.As(err, &appErr) {
		resp := build(appErr.Code, appErr.Params)
		if cause, params, ok := vendorCode(appErr.Err); ok && cause != appErr.Code {
			resp.Detail = cause.Message(params)
		}
		if appErr.Params.Resource != "" {
			resp.AdditionalData = map[string]any{"resource": appErr.Params.Resource}
		}
		return resp
	}

	if code, params, ok := vendorCode(err); ok {
		return build(code, params)
	}
	return build(CodeUnknown, Params{})
}

func build(code Code, params Params) Response {
	if !code.Known() {
		code = CodeUnknown
	}
	return Response{
		Success: false,
		Error:   code,
		Message: code.Message(params),
		Status:  code.Status(),
	}
}
