package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestResolveQueryFailedKeepsBusinessCode(t *testing.T) {
	cause := &pgconn.PgError{Code: "57P01", Message: "terminating connection"}
	err := fmt.Errorf("aggregate: %w", QueryFailed("visitorTrend", cause))

	resp := Resolve(err)

	assert.False(t, resp.Success)
	assert.Equal(t, CodeQueryFailed, resp.Error)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "방문자 추이 조회에 실패했습니다.", resp.Message)
	assert.Equal(t, CodeDatabaseUnavailable.Message(Params{}), resp.Detail)
	assert.Equal(t, map[string]any{"resource": "visitorTrend"}, resp.AdditionalData)
}

func TestResolveQueryFailedWithUnknownCause(t *testing.T) {
	resp := Resolve(QueryFailed("somethingNew", errors.New("boom")))

	assert.Equal(t, CodeQueryFailed, resp.Error)
	assert.Equal(t, "데이터 조회에 실패했습니다.", resp.Message)
	assert.Empty(t, resp.Detail)
}

func TestResolvePostgresTable(t *testing.T) {
	cases := []struct {
		name   string
		code   string
		want   Code
		status int
	}{
		{"unique", "23505", CodeDuplicateData, http.StatusConflict},
		{"fk", "23503", CodeForeignKeyViolation, http.StatusConflict},
		{"bad uuid", "22P02", CodeInvalidParameter, http.StatusBadRequest},
		{"cancel", "57014", CodeTimeout, http.StatusGatewayTimeout},
		{"class fallback 08", "08006", CodeDatabaseUnavailable, http.StatusServiceUnavailable},
		{"class fallback 23", "23000", CodeConstraintViolation, http.StatusBadRequest},
		{"unknown class", "XX000", CodeQueryFailed, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := Resolve(&pgconn.PgError{Code: tc.code, TableName: "farms"})
			assert.Equal(t, tc.want, resp.Error)
			assert.Equal(t, tc.status, resp.Status)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestResolveDuplicateUsesTableLabel(t *testing.T) {
	resp := Resolve(&pgconn.PgError{Code: "23505", TableName: "farms"})
	assert.Equal(t, "이미 존재하는 농장입니다.", resp.Message)
}

func TestResolveGormAndContextErrors(t *testing.T) {
	assert.Equal(t, CodeNotFound, Resolve(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)).Error)
	assert.Equal(t, CodeTimeout, Resolve(context.DeadlineExceeded).Error)
	assert.Equal(t, CodeRequestCancelled, Resolve(context.Canceled).Error)
}

func TestResolveJWTErrors(t *testing.T) {
	expired := fmt.Errorf("%w: %w", jwt.ErrTokenInvalidClaims, jwt.ErrTokenExpired)
	assert.Equal(t, CodeAuthTokenExpired, Resolve(expired).Error)
	assert.Equal(t, CodeAuthTokenInvalid, Resolve(jwt.ErrTokenSignatureInvalid).Error)
	assert.Equal(t, CodeAuthInvalidAudience, Resolve(jwt.ErrTokenInvalidAudience).Error)
}

func TestResolveUnknown(t *testing.T) {
	resp := Resolve(errors.New("kaboom"))
	assert.Equal(t, CodeUnknown, resp.Error)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, genericMessage, resp.Message)

	resp = Resolve(New(Code("NOT_IN_TABLE"), Params{}, nil))
	assert.Equal(t, CodeUnknown, resp.Error)
}

func TestTemplatesInterpolateParams(t *testing.T) {
	assert.Equal(t, "농장 ID 값 'abc'이(가) 올바르지 않습니다.", InvalidParameter("farmId", "abc").Message())
	assert.Equal(t, "요청 값이 올바르지 않습니다.", CodeInvalidParameter.Message(Params{}))
	assert.Equal(t, "사용자을(를) 찾을 수 없습니다.", CodeNotFound.Message(Params{Resource: "profile"}))
}

func TestEveryCodeHasStatusAndMessage(t *testing.T) {
	for code, def := range definitions {
		assert.GreaterOrEqual(t, def.status, 400, code)
		assert.NotEmpty(t, code.Message(Params{}), code)
	}
}

func TestErrorString(t *testing.T) {
	err := QueryFailed("timeStats", errors.New("timeout"))
	assert.Equal(t, "GENERAL_QUERY_FAILED(timeStats): timeout", err.Error())
	assert.Equal(t, "GENERAL_UNAUTHORIZED", New(CodeUnauthorized, Params{}, nil).Error())
}
