// Package templates renders the pages and HTMX fragments served by the
// handlers. Components are written in templ; the *_templ.go files are
// generated with `templ generate` and committed.
package templates

import (
	"strings"

	"github.com/a-h/templ"
)

const appCSS = `
*{box-sizing:border-box}
body{margin:0;font-family:Arial,Helvetica,sans-serif;background:#f3f4f6;color:#1f2937}
.topbar{display:flex;align-items:center;gap:24px;padding:12px 24px;background:#1F3864;color:#fff}
.topbar a{color:#dbe4f3;text-decoration:none}
.topbar a.active{color:#fff;font-weight:bold}
.topbar .spacer{flex:1}
.topbar form{margin:0}
main{padding:24px;max-width:1400px;margin:0 auto}
.card{background:#fff;border-radius:8px;padding:20px;margin-bottom:20px;box-shadow:0 1px 2px rgba(0,0,0,.06)}
.btn{display:inline-block;padding:7px 14px;border-radius:6px;border:1px solid #1F3864;background:#1F3864;color:#fff;cursor:pointer;text-decoration:none;font-size:14px}
.btn.secondary{background:#fff;color:#1F3864}
.btn.danger{background:#b91c1c;border-color:#b91c1c}
.btn[disabled]{opacity:.5;cursor:not-allowed}
table.list{width:100%;border-collapse:collapse}
table.list th,table.list td{padding:8px;border-bottom:1px solid #e5e7eb;text-align:left;font-size:14px}
table.list td.num,table.list th.num{text-align:right}
label{display:block;font-size:13px;color:#4b5563;margin-bottom:4px}
input,select,textarea{width:100%;padding:7px;border:1px solid #d1d5db;border-radius:6px;font:inherit}
input[type=checkbox]{width:auto}
.grid{display:grid;gap:12px;grid-template-columns:repeat(auto-fill,minmax(180px,1fr))}
.editor{display:grid;gap:24px;grid-template-columns:minmax(420px,1fr) 820px}
.field-error{color:#b91c1c;font-size:12px;margin:4px 0 0}
.badge{padding:2px 8px;border-radius:10px;font-size:12px;background:#e5e7eb}
.badge[data-status=approved]{background:#d1fae5}.badge[data-status=rejected]{background:#fee2e2}.badge[data-status=expired]{background:#fef3c7}
#toast{position:fixed;right:20px;bottom:20px;padding:12px 16px;border-radius:6px;color:#fff;display:none}
#toast.error{background:#b91c1c}#toast.success{background:#047857}#toast.info{background:#1F3864}
`

// PreviewCSS styles the quote page. The preview is laid out at A4 width
// (794px at 96 dpi) so the rasterized export slices it into A4 bands.
const PreviewCSS = `
#quote-preview{width:794px;background:#fff;color:#111;font-family:Arial,Helvetica,sans-serif;font-size:13px;padding:0 0 32px}
#quote-preview .qp-header img{display:block;width:100%}
#quote-preview .qp-body{padding:24px 48px 0}
#quote-preview .qp-company{text-align:right;line-height:1.5;color:#374151}
#quote-preview .qp-company strong{color:#111;font-size:15px}
#quote-preview h1{font-size:20px;color:#1F3864;margin:20px 0 12px;letter-spacing:.5px}
#quote-preview .qp-meta{display:grid;grid-template-columns:110px 1fr;gap:4px 12px;margin-bottom:20px}
#quote-preview .qp-meta dt{font-weight:bold}
#quote-preview .qp-meta dd{margin:0}
#quote-preview .qp-group{margin-bottom:14px}
#quote-preview .qp-group h2{background:#D9E2F3;color:#1F3864;font-size:13px;margin:0;padding:6px 8px}
#quote-preview table{width:100%;border-collapse:collapse}
#quote-preview th{font-size:12px;text-align:left;border-bottom:1px solid #9ca3af;padding:5px 8px}
#quote-preview td{padding:5px 8px;border-bottom:1px solid #e5e7eb;vertical-align:top}
#quote-preview .num{text-align:right;white-space:nowrap}
#quote-preview .qp-empty{padding:24px;text-align:center;color:#6b7280;border:1px dashed #d1d5db}
#quote-preview .qp-totals{margin:16px 0 0 auto;width:300px}
#quote-preview .qp-totals td{border:none;padding:3px 8px}
#quote-preview .qp-totals tr.qp-total td{border-top:2px solid #1F3864;font-weight:bold;font-size:15px;color:#1F3864}
#quote-preview .qp-considerations{margin-top:24px}
#quote-preview .qp-considerations h3{font-size:13px;color:#1F3864;margin:0 0 6px}
#quote-preview .qp-considerations p{margin:0;white-space:pre-line}
#quote-preview .qp-signature{margin-top:40px;text-align:center;line-height:1.4}
#quote-preview .qp-signature img{display:block;margin:0 auto 4px;width:150px;height:60px;object-fit:contain}
`

// inlineStyle emits a <style> element; templ keeps style bodies static.
func inlineStyle(css ...string) templ.Component {
	return templ.Raw("<style>" + strings.Join(css, "") + "</style>")
}
