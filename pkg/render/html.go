package render

import (
	"html/template"
	"io"
)

// htmlTemplate mirrors the markup of the WordPress shortcode this format
// replaces, so existing theme CSS keeps working.
var htmlTemplate = template.Must(template.New("recipe").Parse(`<div id="beerxml-recipe">
  <div id="fermentables">
    <h2>Fermentables</h2>
    <table>
      <thead>
        <tr><th>Name</th><th>Amount</th></tr>
      </thead>
      <tbody>
{{- range .Fermentables}}
        <tr><td>{{.Name}}</td><td>{{.Amount}}</td></tr>
{{- end}}
      </tbody>
    </table>
  </div>
  <div id="hops">
    <h2>Hops</h2>
    <table>
      <thead>
        <tr><th>Name</th><th>Amount</th><th>Time</th><th>Use</th><th>Form</th><th>Alpha %</th></tr>
      </thead>
      <tbody>
{{- range .Hops}}
        <tr><td>{{.Name}}</td><td>{{.Amount}}</td><td>{{.Time}}</td><td>{{.Use}}</td><td>{{.Form}}</td><td>{{.Alpha.Number}}</td></tr>
{{- end}}
      </tbody>
    </table>
  </div>
  <div id="yeasts">
    <h2>Yeast</h2>
    <table>
      <thead>
        <tr><th>Name</th><th>Lab</th><th>Attenuation</th><th>Temperature</th></tr>
      </thead>
      <tbody>
{{- range .Yeasts}}
        <tr><td>{{.Name}}</td><td>{{.Laboratory}}</td><td>{{.Attenuation.Number}}%</td><td>{{.TemperatureRange}}</td></tr>
{{- end}}
      </tbody>
    </table>
  </div>
</div>
`))

// NoRecipeHTML is the placeholder for a document that yielded no recipe.
// It is a comment so a page embedding the fragment shows nothing.
const NoRecipeHTML = "<!-- Error parsing BeerXML document -->\n"

// WriteHTML writes the view as an HTML fragment with three tables.
// All values are escaped.
func WriteHTML(w io.Writer, v View) error {
	return htmlTemplate.Execute(w, v)
}

func writeNoRecipeHTML(w io.Writer) error {
	_, err := io.WriteString(w, NoRecipeHTML)
	return err
}
