package compose

import "html/template"

var reportTmpl = template.Must(template.New("report").Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Personal Tax Intake Summary</title>
<style>
body { font-family: Georgia, serif; margin: 40px; color: #1a1a1a; }
h1 { border-bottom: 3px solid #1a3e6e; padding-bottom: 8px; }
h2 { color: #1a3e6e; margin-top: 32px; }
h3 { margin-bottom: 4px; }
table { border-collapse: collapse; margin: 8px 0 16px; }
td, th { border: 1px solid #bbb; padding: 6px 12px; text-align: left; }
img { max-width: 640px; display: block; margin: 8px 0; border: 1px solid #ccc; }
.doc-count { color: #555; font-style: italic; }
.signature { margin-top: 24px; border-top: 1px solid #1a1a1a; width: 320px; padding-top: 4px; }
.declaration { page-break-before: always; border-top: 4px double #1a3e6e; margin-top: 48px; padding-top: 16px; }
.meta { color: #555; font-size: 0.9em; }
</style>
</head>
<body>
<h1>Personal Tax Intake Summary</h1>
<p class="meta">Generated {{.GeneratedAt}}</p>

<h2>Taxpayer</h2>
<table>
<tr><th>Name</th><td>{{.Taxpayer.Name}}</td></tr>
<tr><th>Date of Birth</th><td>{{.Taxpayer.DateOfBirth}}</td></tr>
<tr><th>Tax ID</th><td>{{.Taxpayer.TaxID}}</td></tr>
<tr><th>Address</th><td>{{.Taxpayer.Address}}</td></tr>
<tr><th>Phone</th><td>{{.Taxpayer.Phone}}</td></tr>
<tr><th>Email</th><td>{{.Taxpayer.Email}}</td></tr>
<tr><th>Occupation</th><td>{{.Taxpayer.Occupation}}</td></tr>
<tr><th>Driver License</th><td>{{.Taxpayer.LicenseState}} {{.Taxpayer.LicenseNumber}}</td></tr>
</table>

{{if .ShowSpouse}}
<h2>Spouse</h2>
<table>
<tr><th>Name</th><td>{{.Spouse.Name}}</td></tr>
<tr><th>Date of Birth</th><td>{{.Spouse.DateOfBirth}}</td></tr>
<tr><th>Tax ID</th><td>{{.Spouse.TaxID}}</td></tr>
<tr><th>Phone</th><td>{{.Spouse.Phone}}</td></tr>
<tr><th>Email</th><td>{{.Spouse.Email}}</td></tr>
<tr><th>Occupation</th><td>{{.Spouse.Occupation}}</td></tr>
<tr><th>Driver License</th><td>{{.Spouse.LicenseState}} {{.Spouse.LicenseNumber}}</td></tr>
</table>
{{end}}

{{if .Dependents}}
<h2>Dependents</h2>
{{range .Dependents}}
<table>
<tr><th>Name</th><td>{{.Name}}</td></tr>
<tr><th>Date of Birth</th><td>{{.DateOfBirth}}</td></tr>
<tr><th>Tax ID</th><td>{{.TaxID}}</td></tr>
<tr><th>Relationship</th><td>{{.Relationship}}</td></tr>
</table>
{{end}}
{{end}}

{{if .ShowBank}}
<h2>Direct Deposit</h2>
<table>
<tr><th>Bank</th><td>{{.Bank.BankName}}</td></tr>
<tr><th>Account Number</th><td>{{.Bank.AccountNumber}}</td></tr>
<tr><th>Routing Number</th><td>{{.Bank.RoutingNumber}}</td></tr>
</table>
{{end}}

{{if .Slots}}
<h2>Identity &amp; Prior Documents</h2>
{{range .Slots}}
<h3>{{.Label}}</h3>
{{if .File.IsImage}}<img src="{{.File.Src}}" alt="{{.File.Name}}">{{else}}<object data="{{.File.Src}}" width="640" height="480">{{.File.Name}}</object>{{end}}
{{end}}
{{end}}

{{if .IncomeDocs}}
<h2>General Income Documents</h2>
<p class="doc-count">{{len .IncomeDocs}} document(s)</p>
{{range .IncomeDocs}}
{{if .IsImage}}<img src="{{.Src}}" alt="{{.Name}}">{{else}}<object data="{{.Src}}" width="640" height="480">{{.Name}}</object>{{end}}
{{end}}
{{end}}

{{if .Income}}
<h2>Income Sources</h2>
{{range .Income}}
<h3>{{.Heading}}</h3>
{{if .Detail}}<p>{{.Detail}}</p>{{end}}
<p class="doc-count">{{.Count}} document(s)</p>
{{range .Files}}
{{if .IsImage}}<img src="{{.Src}}" alt="{{.Name}}">{{else}}<object data="{{.Src}}" width="640" height="480">{{.Name}}</object>{{end}}
{{end}}
{{end}}
{{end}}

{{if .Adjustments}}
<h2>Adjustments</h2>
{{range .Adjustments}}
<h3>{{.Heading}}</h3>
{{if .Detail}}<p>{{.Detail}}</p>{{end}}
<p class="doc-count">{{.Count}} document(s)</p>
{{range .Files}}
{{if .IsImage}}<img src="{{.Src}}" alt="{{.Name}}">{{else}}<object data="{{.Src}}" width="640" height="480">{{.Name}}</object>{{end}}
{{end}}
{{end}}
{{end}}

{{if .Deductions}}
<h2>Credits &amp; Deductions</h2>
{{range .Deductions}}
<h3>{{.Heading}}</h3>
{{if .Detail}}<p>{{.Detail}}</p>{{end}}
<p class="doc-count">{{.Count}} document(s)</p>
{{range .Files}}
{{if .IsImage}}<img src="{{.Src}}" alt="{{.Name}}">{{else}}<object data="{{.Src}}" width="640" height="480">{{.Name}}</object>{{end}}
{{end}}
{{end}}
{{end}}

<h2>Signatures</h2>
<p class="signature">{{.Signature}}<br>Taxpayer Signature</p>
{{if .SpouseSignature}}<p class="signature">{{.SpouseSignature}}<br>Spouse Signature</p>{{end}}

<div class="declaration">
<h2>Declaration</h2>
<p>Under penalties of perjury, I declare that the information provided in this
intake summary and the accompanying documents is true, correct, and complete
to the best of my knowledge and belief. I understand that my tax preparer
will rely on this information to prepare my federal and state income tax
returns, and that I am responsible for retaining the original records.</p>
<p class="meta">Submitted {{.SubmittedAt}}<br>Reference {{.Reference}}</p>
</div>
</body>
</html>
`
