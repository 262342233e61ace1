// Package export renders complaint listings as CSV and PDF reports for the
// administration panel.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/gocarina/gocsv"

	"github.com/univertix/ouvidoria-backend/internal/models"
)

type csvRow struct {
	Protocol      string `csv:"protocol"`
	Title         string `csv:"title"`
	Type          string `csv:"type"`
	Status        string `csv:"status"`
	Date          string `csv:"date"`
	Anonymous     string `csv:"anonymous"`
	Submitter     string `csv:"submitter"`
	Description   string `csv:"description"`
	AdminResponse string `csv:"admin_response"`
}

// CSV renders the complaints as a CSV document. Anonymous rows show no
// submitter; credential fields are never part of any export.
func CSV(complaints []models.Complaint) ([]byte, error) {
	rows := make([]csvRow, len(complaints))
	for i, c := range complaints {
		rows[i] = csvRow{
			Protocol:      c.ProtocolCode,
			Title:         c.Title,
			Type:          c.Type,
			Status:        c.Status,
			Date:          c.CreatedAt.Format("2006-01-02"),
			Anonymous:     yesNo(c.IsAnonymous),
			Submitter:     submitterName(&c),
			Description:   c.Description,
			AdminResponse: orDefault(c.AdminResponse, "no response"),
		}
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}
	return []byte(out), nil
}

// PDF renders the complaints as a paginated PDF report.
func PDF(complaints []models.Complaint) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 20, "Complaint Report - Univertix")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 30, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Text(20, 40, fmt.Sprintf("Total complaints: %d", len(complaints)))

	y := 60.0
	pdf.SetFont("Helvetica", "", 10)
	for i, c := range complaints {
		if y > 270 {
			pdf.AddPage()
			y = 20
		}

		pdf.Text(20, y, fmt.Sprintf("%d. Protocol: %s", i+1, c.ProtocolCode))
		y += 7
		pdf.Text(20, y, fmt.Sprintf("Title: %s", truncate(c.Title, 90)))
		y += 7
		pdf.Text(20, y, fmt.Sprintf("Type: %s | Status: %s", c.Type, c.Status))
		y += 7
		pdf.Text(20, y, fmt.Sprintf("Date: %s", c.CreatedAt.Format("2006-01-02")))
		y += 7

		if !c.IsAnonymous {
			pdf.Text(20, y, fmt.Sprintf("Submitter: %s", submitterName(&c)))
			y += 7
		}
		if c.AdminResponse != nil {
			pdf.Text(20, y, fmt.Sprintf("Response: %s", truncate(*c.AdminResponse, 80)))
			y += 7
		}

		y += 10
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func submitterName(c *models.Complaint) string {
	if c.IsAnonymous {
		return "anonymous"
	}
	if c.User != nil && c.User.FullName != "" {
		return c.User.FullName
	}
	return "n/a"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDefault(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
