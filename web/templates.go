package web

import "html/template"

var pageTemplate = template.Must(template.New("index").Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>House price prediction</title>
<style>
body { font-family: Arial, sans-serif; background: #f8f9fa; margin: 50px; }
.container { max-width: 440px; background: #fff; padding: 20px; border-radius: 10px; box-shadow: 0 0 10px rgba(0,0,0,0.1); }
label { display: block; margin-top: 8px; }
input { width: 100%; padding: 8px; margin: 4px 0; border: 1px solid #ccc; border-radius: 5px; box-sizing: border-box; }
button { background: #007bff; color: white; border: none; padding: 10px; margin-top: 12px; border-radius: 5px; cursor: pointer; width: 100%; }
button:hover { background: #0056b3; }
.result { color: #155724; }
.error { color: #721c24; }
</style>
</head>
<body>
<div class="container">
<h2>House price prediction</h2>
<form method="post" action="/predict">
{{range .Fields}}<label for="{{.ID}}">{{.Label}}</label>
<input id="{{.ID}}" name="{{.Name}}" type="number" step="any" value="{{.Value}}"{{if .Min}} min="{{.Min}}"{{end}}{{if .Max}} max="{{.Max}}"{{end}} required>
{{end}}<button type="submit">Predict price</button>
</form>
{{if .Result}}<h3 class="result">Predicted price: {{.Result.Formatted}}</h3>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
</div>
</body>
</html>
`
