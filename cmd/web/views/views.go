package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var files embed.FS

// PageTemplate 는 게시글 관리 페이지 전체를 그리는 템플릿 이름이다.
const PageTemplate = "page.tmpl"

// Templates 는 임베드된 템플릿을 파싱한다. 템플릿 오류는 빌드 산출물 문제이므로 panic 한다.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"toastClass": toastClass,
	}).ParseFS(files, "templates/*.tmpl"))
}

func toastClass(kind string) string {
	if kind == "error" {
		return "toast toast-error"
	}
	return "toast toast-success"
}
