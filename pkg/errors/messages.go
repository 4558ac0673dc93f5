package errors

import "net/http"

// userMessages maps API error codes to user-facing Korean messages, mirroring
// the messages shown in the web app.
var userMessages = map[string]string{
	CodeUnauthorized:        "로그인이 필요합니다. 다시 로그인해 주세요.",
	CodeTokenExpired:        "로그인 세션이 만료되었습니다. 다시 로그인해 주세요.",
	CodeRefreshTokenExpired: "로그인 세션이 만료되었습니다. 다시 로그인해 주세요.",
	CodeInvalidRefreshToken: "로그인 정보가 올바르지 않습니다. 다시 로그인해 주세요.",
	CodeValidationFailed:    "입력하신 내용을 다시 확인해 주세요.",
	CodeBadRequest:          "잘못된 요청입니다. 입력 내용을 확인해 주세요.",
	CodeInvalidQueryParam:   "잘못된 요청입니다. 입력 내용을 확인해 주세요.",
	CodeForbidden:           "해당 기능에 대한 권한이 없습니다.",
	CodeResourceNotFound:    "요청하신 정보를 찾을 수 없습니다.",
	CodeUserNotFound:        "사용자 정보를 찾을 수 없습니다.",
	CodeDuplicateResource:   "이미 등록된 정보입니다.",
	CodeStateConflict:       "요청을 처리할 수 없는 상태입니다. 잠시 후 다시 시도해 주세요.",
	CodeUnprocessable:       "요청을 처리할 수 없습니다. 입력 내용을 확인해 주세요.",
	CodeTooManyRequests:     "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.",
	CodeInternalServerError: "서버 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.",
	CodeDatabaseError:       "서버 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.",
	CodeUnknownError:        "알 수 없는 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.",
}

// providerMessages maps identity-provider error codes to user-facing messages.
var providerMessages = map[string]string{
	"auth/invalid-credential":     "이메일 또는 비밀번호가 올바르지 않습니다.",
	"auth/invalid-email":          "이메일 형식이 올바르지 않습니다.",
	"auth/user-disabled":          "해당 계정은 사용이 중지되었습니다.",
	"auth/too-many-requests":      "로그인 시도가 너무 많습니다. 잠시 후 다시 시도해 주세요.",
	"auth/network-request-failed": "네트워크 오류가 발생했습니다. 인터넷 연결을 확인해 주세요.",
}

// UserMessage resolves a user-facing message for an error code. Resolution
// order: code table, then the server-supplied message, then a generic message.
// It never returns an empty string.
func UserMessage(code, serverMessage string) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	if msg, ok := providerMessages[code]; ok {
		return msg
	}
	if serverMessage != "" {
		return serverMessage
	}
	return userMessages[CodeUnknownError]
}

// userMessageForStatus resolves a message when no code table entry and no
// server message exist: the HTTP status line, then the generic fallback.
func userMessageForStatus(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return userMessages[CodeUnknownError]
}
