package httpclient

import (
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 2048

// HTTPError 는 원격 서비스가 2xx 이외의 상태 코드를 반환했을 때의 에러다.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: status=%d body=%s", e.Op, e.StatusCode, string(e.Body))
}

// NewHTTPError 는 응답 바디 일부를 읽어 HTTPError 를 만든다. 바디는 닫지 않는다.
func NewHTTPError(op string, resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: body}
}

// IsSuccess 는 2xx 여부를 반환한다.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
