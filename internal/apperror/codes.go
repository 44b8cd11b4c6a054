package apperror

import (
	"fmt"
	"net/http"
)

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeUnknown              Code = "UNKNOWN_ERROR"
	CodeQueryFailed          Code = "GENERAL_QUERY_FAILED"
	CodeUnauthorized         Code = "GENERAL_UNAUTHORIZED"
	CodeForbidden            Code = "GENERAL_FORBIDDEN"
	CodeNotFound             Code = "GENERAL_NOT_FOUND"
	CodeInvalidParameter     Code = "GENERAL_INVALID_PARAMETER"
	CodeMissingField         Code = "GENERAL_MISSING_REQUIRED_FIELD"
	CodeDuplicateData        Code = "GENERAL_DUPLICATE_DATA"
	CodeForeignKeyViolation  Code = "GENERAL_FOREIGN_KEY_VIOLATION"
	CodeConstraintViolation  Code = "GENERAL_CONSTRAINT_VIOLATION"
	CodeValueTooLong         Code = "GENERAL_VALUE_TOO_LONG"
	CodeInvalidDate          Code = "GENERAL_INVALID_DATE"
	CodeConflict             Code = "GENERAL_CONFLICT"
	CodeTimeout              Code = "GENERAL_TIMEOUT"
	CodeRequestCancelled     Code = "GENERAL_REQUEST_CANCELLED"
	CodeDatabaseUnavailable  Code = "GENERAL_DATABASE_UNAVAILABLE"
	CodeServiceUnavailable   Code = "GENERAL_SERVICE_UNAVAILABLE"
	CodeInternal             Code = "GENERAL_INTERNAL_ERROR"
	CodeAuthTokenMissing     Code = "AUTH_TOKEN_MISSING"
	CodeAuthTokenInvalid     Code = "AUTH_TOKEN_INVALID"
	CodeAuthTokenExpired     Code = "AUTH_TOKEN_EXPIRED"
	CodeAuthTokenNotYetValid Code = "AUTH_TOKEN_NOT_YET_VALID"
	CodeAuthInvalidAudience  Code = "AUTH_INVALID_AUDIENCE"
	CodeAuthProfileNotFound  Code = "AUTH_PROFILE_NOT_FOUND"
	CodeAuthAccountInactive  Code = "AUTH_ACCOUNT_INACTIVE"
	CodeAuthMisconfigured    Code = "AUTH_CONFIGURATION_ERROR"
	CodeExportFailed         Code = "EXPORT_FAILED"
	CodeExportEmpty          Code = "EXPORT_NO_DATA"
)

// Params are the values a message template may interpolate.
type Params struct {
	Resource string
	Field    string
	Value    string
}

// Template renders a localized message from Params.
type Template func(Params) string

type definition struct {
	status  int
	message Template
}

func static(message string) Template {
	return func(Params) string { return message }
}

const genericMessage = "알 수 없는 오류가 발생했습니다. 잠시 후 다시 시도해주세요."

var definitions = map[Code]definition{
	CodeUnknown: {http.StatusInternalServerError, static(genericMessage)},
	CodeQueryFailed: {http.StatusInternalServerError, func(p Params) string {
		return fmt.Sprintf("%s 조회에 실패했습니다.", resourceLabel(p.Resource))
	}},
	CodeUnauthorized: {http.StatusUnauthorized, static("로그인이 필요합니다.")},
	CodeForbidden: {http.StatusForbidden, func(p Params) string {
		return fmt.Sprintf("%s에 대한 접근 권한이 없습니다.", resourceLabel(p.Resource))
	}},
	CodeNotFound: {http.StatusNotFound, func(p Params) string {
		return fmt.Sprintf("%s을(를) 찾을 수 없습니다.", resourceLabel(p.Resource))
	}},
	CodeInvalidParameter: {http.StatusBadRequest, func(p Params) string {
		if p.Value != "" {
			return fmt.Sprintf("%s 값 '%s'이(가) 올바르지 않습니다.", fieldLabel(p.Field), p.Value)
		}
		return fmt.Sprintf("%s 값이 올바르지 않습니다.", fieldLabel(p.Field))
	}},
	CodeMissingField: {http.StatusBadRequest, func(p Params) string {
		return fmt.Sprintf("%s은(는) 필수 항목입니다.", fieldLabel(p.Field))
	}},
	CodeDuplicateData: {http.StatusConflict, func(p Params) string {
		return fmt.Sprintf("이미 존재하는 %s입니다.", resourceLabel(p.Resource))
	}},
	CodeForeignKeyViolation: {http.StatusConflict, func(p Params) string {
		return fmt.Sprintf("연결된 데이터가 있어 %s을(를) 처리할 수 없습니다.", resourceLabel(p.Resource))
	}},
	CodeConstraintViolation: {http.StatusBadRequest, func(p Params) string {
		return fmt.Sprintf("%s 데이터가 제약 조건을 위반했습니다.", resourceLabel(p.Resource))
	}},
	CodeValueTooLong: {http.StatusBadRequest, func(p Params) string {
		return fmt.Sprintf("%s 값이 허용된 길이를 초과했습니다.", fieldLabel(p.Field))
	}},
	CodeInvalidDate:          {http.StatusBadRequest, static("날짜 또는 시간 형식이 올바르지 않습니다.")},
	CodeConflict:             {http.StatusConflict, static("다른 요청과 충돌했습니다. 다시 시도해주세요.")},
	CodeTimeout:              {http.StatusGatewayTimeout, static("요청 시간이 초과되었습니다. 잠시 후 다시 시도해주세요.")},
	CodeRequestCancelled:     {http.StatusRequestTimeout, static("요청이 취소되었습니다.")},
	CodeDatabaseUnavailable:  {http.StatusServiceUnavailable, static("데이터베이스에 연결할 수 없습니다. 잠시 후 다시 시도해주세요.")},
	CodeServiceUnavailable:   {http.StatusServiceUnavailable, static("서비스를 일시적으로 사용할 수 없습니다.")},
	CodeInternal:             {http.StatusInternalServerError, static("서버 내부 오류가 발생했습니다.")},
	CodeAuthTokenMissing:     {http.StatusUnauthorized, static("인증 토큰이 필요합니다.")},
	CodeAuthTokenInvalid:     {http.StatusUnauthorized, static("유효하지 않은 인증 토큰입니다.")},
	CodeAuthTokenExpired:     {http.StatusUnauthorized, static("인증이 만료되었습니다. 다시 로그인해주세요.")},
	CodeAuthTokenNotYetValid: {http.StatusUnauthorized, static("아직 사용할 수 없는 인증 토큰입니다.")},
	CodeAuthInvalidAudience:  {http.StatusUnauthorized, static("이 서비스에서 발급되지 않은 인증 토큰입니다.")},
	CodeAuthProfileNotFound:  {http.StatusUnauthorized, static("사용자 정보를 찾을 수 없습니다.")},
	CodeAuthAccountInactive:  {http.StatusForbidden, static("비활성화된 계정입니다. 관리자에게 문의해주세요.")},
	CodeAuthMisconfigured:    {http.StatusInternalServerError, static("인증 설정이 올바르지 않습니다.")},
	CodeExportFailed: {http.StatusInternalServerError, func(p Params) string {
		return fmt.Sprintf("%s 내보내기에 실패했습니다.", resourceLabel(p.Resource))
	}},
	CodeExportEmpty: {http.StatusNotFound, func(p Params) string {
		return fmt.Sprintf("내보낼 %s이(가) 없습니다.", resourceLabel(p.Resource))
	}},
}

// Status returns the HTTP status for code, or 500 for unknown codes.
func (c Code) Status() int {
	if def, ok := definitions[c]; ok {
		return def.status
	}
	return http.StatusInternalServerError
}

// Message renders the localized message for code.
func (c Code) Message(p Params) string {
	if def, ok := definitions[c]; ok {
		return def.message(p)
	}
	return genericMessage
}

// Known reports whether code has a table entry.
func (c Code) Known() bool {
	_, ok := definitions[c]
	return ok
}
