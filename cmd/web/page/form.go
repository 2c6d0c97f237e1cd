package page

import (
	"errors"
	"strings"
)

var ErrInvalidForm = errors.New("title and body are required")

// PostForm 은 생성/수정 폼의 입력값이다.
type PostForm struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Trimmed 는 앞뒤 공백을 제거한 값을 반환한다.
func (f PostForm) Trimmed() PostForm {
	return PostForm{Title: strings.TrimSpace(f.Title), Body: strings.TrimSpace(f.Body)}
}

// Valid 는 두 필드가 공백 제거 후 모두 비어 있지 않은지 반환한다.
func (f PostForm) Valid() bool {
	t := f.Trimmed()
	return t.Title != "" && t.Body != ""
}

func (f PostForm) Validate() error {
	if !f.Valid() {
		return ErrInvalidForm
	}
	return nil
}
