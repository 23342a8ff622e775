// Package compose flattens an account snapshot into a single self-contained
// printable HTML document with every normalized payload embedded inline.
package compose

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/models"
)

// Filename returns the fixed download name derived from the filer's name and
// the current date.
func Filename(rec *models.AccountRecord, now time.Time) string {
	name := strings.TrimSpace(rec.Taxpayer.Name)
	if name == "" {
		name = "Taxpayer"
	}
	return fmt.Sprintf("%s - Tax Intake Summary - %s.html", name, now.Format("2006-01-02"))
}

type fileView struct {
	Name    string
	IsImage bool
	Src     template.URL
}

type slotView struct {
	Label string
	File  fileView
}

type categorySection struct {
	Heading string
	Detail  string
	Count   int
	Files   []fileView
}

type documentView struct {
	Taxpayer        models.PersonInfo
	Spouse          models.PersonInfo
	ShowSpouse      bool
	ShowBank        bool
	Bank            models.BankInfo
	Dependents      []models.Dependent
	Slots           []slotView
	IncomeDocs      []fileView
	Income          []categorySection
	Adjustments     []categorySection
	Deductions      []categorySection
	Signature       string
	SpouseSignature string
	GeneratedAt     string
	SubmittedAt     string
	Reference       string
}

// Compose renders the full report. Output is a pure function of the record
// and submission metadata; only the generated-at display string depends on
// the wall clock passed in.
func Compose(rec *models.AccountRecord, meta models.SubmissionMetadata, now time.Time) (string, error) {
	v := documentView{
		Taxpayer:        rec.Taxpayer,
		Spouse:          rec.Spouse,
		ShowSpouse:      rec.FilingJointly && strings.TrimSpace(rec.Spouse.Name) != "",
		ShowBank:        !rec.Bank.Empty(),
		Bank:            rec.Bank,
		Dependents:      rec.Dependents,
		Slots:           slotViews(rec.Uploads),
		IncomeDocs:      fileViews(rec.Uploads.IncomeDocs),
		Income:          sections(models.KindIncome, rec.IncomeSources),
		Adjustments:     sections(models.KindAdjustment, rec.Adjustments),
		Deductions:      sections(models.KindDeduction, rec.Deductions),
		Signature:       rec.Signature,
		SpouseSignature: rec.SpouseSignature,
		GeneratedAt:     now.Format("January 2, 2006 3:04 PM MST"),
		SubmittedAt:     meta.SubmittedAt.Format("January 2, 2006 3:04 PM MST"),
		Reference:       meta.Reference,
	}
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("compose document: %w", err)
	}
	return buf.String(), nil
}

func fileView1(f models.UploadedFile) fileView {
	return fileView{
		Name:    f.Name,
		IsImage: strings.HasPrefix(f.MimeType, "image/"),
		// Payloads are produced by the normalizer as data URIs; mark them
		// trusted so html/template does not strip them.
		Src: template.URL(f.Data),
	}
}

func fileViews(files []models.UploadedFile) []fileView {
	out := make([]fileView, 0, len(files))
	for _, f := range files {
		out = append(out, fileView1(f))
	}
	return out
}

func slotViews(up models.DocumentUploads) []slotView {
	var out []slotView
	add := func(label string, f *models.UploadedFile) {
		if f != nil {
			out = append(out, slotView{Label: label, File: fileView1(*f)})
		}
	}
	add("Taxpayer Driver License", up.PrimaryLicense)
	add("Spouse Driver License", up.SpouseLicense)
	add("Prior Year Tax Return", up.PriorReturn)
	add("IRS IP PIN Letter", up.PinLetter)
	return out
}

// sections keeps only selected categories, in record order.
func sections(kind string, list []models.CategorizedDocument) []categorySection {
	var out []categorySection
	for _, cd := range list {
		if !cd.Selected {
			continue
		}
		heading := cd.Category
		if label, ok := models.CategoryLabel(kind, cd.Category); ok {
			heading = fmt.Sprintf("%s (%s)", cd.Category, label)
		}
		out = append(out, categorySection{
			Heading: heading,
			Detail:  cd.Detail,
			Count:   len(cd.Files),
			Files:   fileViews(cd.Files),
		})
	}
	return out
}
