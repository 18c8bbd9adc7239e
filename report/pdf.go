package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/utils"
)

// UserAccess is a user holding at least one role on the reported system.
type UserAccess struct {
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// SystemReportData is everything printed in a system report.
type SystemReportData struct {
	System      entity.System      `json:"system"`
	Components  []entity.Component `json:"components"`
	Groups      []EnvironmentGroup `json:"groups"`
	Users       []UserAccess       `json:"users"`
	GeneratedAt time.Time          `json:"generated_at"`
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// FileName is the download name of the report, e.g. "sistema-billing-20240301.pdf".
func FileName(system entity.System, at time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, accentFolder.Replace(strings.TrimSpace(system.Name)))
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = system.ID.String()
	}
	return fmt.Sprintf("sistema-%s-%s.pdf", slug, at.UTC().Format("20060102"))
}

const (
	pageMargin  = 15.0
	rowHeight   = 7.0
	headerColor = 230
)

type column struct {
	title string
	width float64
}

// Render lays the report out on A4 portrait pages.
func Render(data *SystemReportData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCreationDate(data.GeneratedAt)
	pdf.SetModificationDate(data.GeneratedAt)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Reporte de sistema: "+data.System.Name), false)
	pdf.SetCreator("gau-inventory-service", false)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Reporte de sistema: "+data.System.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr("Generado el "+utils.FormatTimestamp(data.GeneratedAt)+" (UTC)"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section(pdf, tr, "Información general")
	info := [][2]string{
		{"Nombre", data.System.Name},
		{"Área", dash(data.System.Area)},
		{"Criticidad", entity.Label(entity.KindCriticality, data.System.Criticality)},
		{"Estado", entity.Label(entity.KindSystemStatus, data.System.Status)},
		{"Registrado", utils.FormatTimestamp(data.System.CreatedAt)},
	}
	for _, kv := range info {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(40, 6, tr(kv[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	if data.System.Description != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, 5, tr(data.System.Description), "", "L", false)
	}
	pdf.Ln(4)

	section(pdf, tr, "Componentes")
	componentCols := []column{{"Nombre", 50}, {"Tipo", 30}, {"Tecnología", 45}, {"Versión", 25}, {"Repositorio", 30}}
	if len(data.Components) == 0 {
		empty(pdf, tr, "Sin componentes registrados")
	} else {
		tableHeader(pdf, tr, componentCols)
		for _, c := range data.Components {
			tableRow(pdf, tr, componentCols, []string{c.Name, entity.Label(entity.KindComponentType, c.Type), dash(c.Technology), dash(c.Version), dash(c.RepositoryURL)})
		}
	}
	pdf.Ln(4)

	section(pdf, tr, "Despliegues por ambiente")
	deploymentCols := []column{{"Componente", 45}, {"Versión", 25}, {"Máquina", 45}, {"Fecha", 35}, {"Estado", 30}}
	if len(data.Groups) == 0 {
		empty(pdf, tr, "Sin despliegues registrados")
	}
	for _, group := range data.Groups {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s (%d)", group.Label, len(group.Deployments))), "", 1, "L", false, 0, "")
		tableHeader(pdf, tr, deploymentCols)
		for _, d := range group.Deployments {
			componentName, machineName := "-", "-"
			if d.Component != nil {
				componentName = d.Component.Name
			}
			if d.Machine != nil {
				machineName = d.Machine.Name
			}
			tableRow(pdf, tr, deploymentCols, []string{componentName, dash(d.Version), machineName, utils.FormatTimestamp(d.DeployedAt), entity.Label(entity.KindDeploymentStatus, d.Status)})
		}
		pdf.Ln(3)
	}
	pdf.Ln(1)

	section(pdf, tr, "Usuarios con acceso")
	userCols := []column{{"Usuario", 35}, {"Nombre", 50}, {"Correo", 55}, {"Roles", 40}}
	if len(data.Users) == 0 {
		empty(pdf, tr, "Sin usuarios asignados")
	} else {
		tableHeader(pdf, tr, userCols)
		for _, u := range data.Users {
			tableRow(pdf, tr, userCols, []string{u.Username, dash(u.FullName), u.Email, strings.Join(u.Roles, ", ")})
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render system report: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func empty(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, tr(text), "", 1, "L", false, 0, "")
}

func tableHeader(pdf *fpdf.Fpdf, tr func(string) string, cols []column) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(headerColor, headerColor, headerColor)
	for _, col := range cols {
		pdf.CellFormat(col.width, rowHeight, tr(col.title), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *fpdf.Fpdf, tr func(string) string, cols []column, values []string) {
	pdf.SetFont("Helvetica", "", 8)
	for i, col := range cols {
		pdf.CellFormat(col.width, rowHeight, fit(pdf, tr(values[i]), col.width-2), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

// fit shortens text with an ellipsis until it fits in width.
func fit(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
